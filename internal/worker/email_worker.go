package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Mails the daily operations brief to the configured recipients via SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"kitchenledger/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// BriefSender delivers one email to a list of recipients.
type BriefSender interface {
	Configured() bool
	SendBrief(to []string, subject, body, attachPath string) error
}

// EmailWorker sends brief emails, retrying transient SMTP failures.
type EmailWorker struct {
	sender BriefSender
	policy infra.RetryPolicy
}

// NewEmailWorker creates an EmailWorker with the provided sender and retry policy.
func NewEmailWorker(sender BriefSender, policy infra.RetryPolicy) *EmailWorker {
	return &EmailWorker{sender: sender, policy: policy}
}

// Attempts is the number of sends tried before the job is dead-lettered.
func (w *EmailWorker) Attempts() int {
	if w.policy.MaxAttempts < 1 {
		return 1
	}
	return w.policy.MaxAttempts
}

// Process sends one brief email. Malformed payloads and permanent send
// failures are returned so the pool can dead-letter the job.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: no recipients, skipping")
		return nil
	}
	if !w.sender.Configured() {
		log.Warn().Msg("email_worker: SMTP not configured, skipping")
		return nil
	}

	err := w.policy.Do(ctx, func(attempt int) error {
		err := w.sender.SendBrief(payload.To, payload.Subject, payload.Body, "")
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Strs("to", payload.To).Msg("email_worker: giving up")
		return err
	}
	log.Info().Strs("to", payload.To).Msg("email_worker: brief sent")
	return nil
}
