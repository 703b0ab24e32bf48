package infra

import (
	"context"
	"regexp"
	"strconv"

	"github.com/tmc/langchaingo/llms"
)

var statusCodePattern = regexp.MustCompile(`status code:? (\d{3})`)

// LangchainBackend adapts any langchaingo chat model.
type LangchainBackend struct {
	model llms.Model
}

func NewLangchainBackend(model llms.Model) *LangchainBackend {
	return &LangchainBackend{model: model}
}

func (b *LangchainBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	})
	if err != nil {
		return "", classifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}

// classifyProviderError recovers the HTTP status from provider errors so the
// retry policy can tell rate limits from bad credentials.
func classifyProviderError(err error) error {
	m := statusCodePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return err
	}
	return &StatusError{Code: code, Body: err.Error()}
}
