package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kitchenledger/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms/openai"
)

// Placeholder texts returned instead of an error.
const (
	AdvisoryUnavailable = "Operations brief service is unavailable."
	AdvisoryKeyMissing  = "Operations brief service is unavailable: API key missing."
	AdvisoryEmpty       = "The advisory service returned no suggestion."
)

// AdvisoryBackend is one call to a generative text service.
type AdvisoryBackend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AdvisoryClient wraps a backend with retries and a circuit breaker. Generate
// never fails: every failure degrades to a placeholder string.
type AdvisoryClient struct {
	backend AdvisoryBackend
	policy  RetryPolicy
	cb      *Breaker
}

// NewAdvisoryClient builds a client. A nil backend means no credential is
// configured; cb may be nil.
func NewAdvisoryClient(backend AdvisoryBackend, policy RetryPolicy, cb *Breaker) *AdvisoryClient {
	return &AdvisoryClient{backend: backend, policy: policy, cb: cb}
}

// NewAdvisoryFromConfig picks the backend named by ADVISORY_PROVIDER.
func NewAdvisoryFromConfig(cfg *config.Config, cb *Breaker) (*AdvisoryClient, error) {
	policy := DefaultRetryPolicy()
	if cfg.AdvisoryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.AdvisoryMaxAttempts
	}
	if cfg.AdvisoryBaseDelay > 0 {
		policy.BaseDelay = cfg.AdvisoryBaseDelay
	}
	if cfg.AdvisoryAPIKey == "" {
		return NewAdvisoryClient(nil, policy, cb), nil
	}

	switch strings.ToLower(cfg.AdvisoryProvider) {
	case "", "gemini":
		return NewAdvisoryClient(NewGeminiBackend(cfg.AdvisoryBaseURL, cfg.AdvisoryModel, cfg.AdvisoryAPIKey), policy, cb), nil
	case "openai":
		opts := []openai.Option{openai.WithToken(cfg.AdvisoryAPIKey)}
		if cfg.AdvisoryModel != "" {
			opts = append(opts, openai.WithModel(cfg.AdvisoryModel))
		}
		if cfg.AdvisoryBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.AdvisoryBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("advisory: openai client: %w", err)
		}
		return NewAdvisoryClient(NewLangchainBackend(llm), policy, cb), nil
	default:
		return nil, fmt.Errorf("advisory: unknown provider %q", cfg.AdvisoryProvider)
	}
}

// Generate returns the drafted text, or a placeholder on any failure.
func (c *AdvisoryClient) Generate(ctx context.Context, systemPrompt, userPrompt string) string {
	if c.backend == nil {
		log.Warn().Msg("advisory: no API key configured")
		return AdvisoryKeyMissing
	}

	var text string
	call := func(ctx context.Context) error {
		return c.policy.Do(ctx, func(attempt int) error {
			out, err := c.backend.Complete(ctx, systemPrompt, userPrompt)
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).Msg("advisory: attempt failed")
				return err
			}
			text = out
			return nil
		})
	}

	var err error
	if c.cb != nil {
		err = c.cb.Call(ctx, call)
	} else {
		err = call(ctx)
	}
	switch {
	case errors.Is(err, ErrBreakerOpen):
		log.Warn().AnErr("last_error", c.cb.LastError()).Msg("advisory: breaker open, skipping provider")
		return AdvisoryUnavailable
	case err != nil:
		log.Error().Err(err).Msg("advisory: giving up")
		return AdvisoryUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return AdvisoryEmpty
	}
	return strings.TrimSpace(text)
}

// BreakerState reports the circuit breaker state for /health.
func (c *AdvisoryClient) BreakerState() string {
	if c.cb == nil {
		return "disabled"
	}
	return string(c.cb.State())
}
