package infra

import (
	"errors"
	"net/smtp"
	"testing"

	"kitchenledger/internal/config"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_SendBrief(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: 2525, SMTPUser: "ops@kitchen.test"})
	var got *email.Email
	var gotAddr string
	m.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		got, gotAddr = e, addr
		return nil
	}

	require.NoError(t, m.SendBrief([]string{"chef@kitchen.test", "gm@kitchen.test"}, "Brief", "Order more basil.", ""))
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "ops@kitchen.test", got.From)
	assert.Equal(t, []string{"chef@kitchen.test", "gm@kitchen.test"}, got.To)
	assert.Equal(t, "Order more basil.", string(got.Text))
}

func TestMailer_NotConfigured(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.SendBrief([]string{"a@b.c"}, "s", "b", ""), ErrMailerNotConfigured)
}

func TestMailer_SendFailureIsWrapped(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: 25})
	boom := errors.New("connection refused")
	m.send = func(*email.Email, string, smtp.Auth) error { return boom }

	err := m.SendBrief([]string{"a@b.c"}, "s", "b", "")
	assert.ErrorIs(t, err, boom)
	assert.Error(t, m.SendBrief(nil, "s", "b", ""))
}
