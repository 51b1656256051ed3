package infra

import (
	"net/smtp"
	"testing"

	"catercost/internal/config"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(send func(e *email.Email, addr string, auth smtp.Auth) error) *Mailer {
	cfg := &config.Config{SMTPHost: "mail.local", SMTPPort: 2525, SMTPUser: "planner@catercost.local"}
	m := NewMailer(cfg, NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2}))
	m.send = send
	return m
}

func TestMailer_SendBuildsMessage(t *testing.T) {
	var got *email.Email
	var gotAddr string
	m := newTestMailer(func(e *email.Email, addr string, _ smtp.Auth) error {
		got, gotAddr = e, addr
		return nil
	})

	err := m.Send(Message{
		To:      []string{"compras@catercost.local"},
		Subject: "Shopping list",
		Text:    "2 items",
		Attachments: []Attachment{
			{Filename: "shopping-list.csv", ContentType: "text/csv", Content: []byte("name,to_buy\nflour,220\n")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "planner@catercost.local", got.From)
	assert.Equal(t, []string{"compras@catercost.local"}, got.To)
	assert.Equal(t, "2 items", string(got.Text))
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "shopping-list.csv", got.Attachments[0].Filename)
}

func TestMailer_RequiresRecipient(t *testing.T) {
	m := newTestMailer(func(*email.Email, string, smtp.Auth) error { return nil })
	assert.Error(t, m.Send(Message{Subject: "x"}))
}

func TestMailer_OpenBreakerSkipsRelay(t *testing.T) {
	calls := 0
	m := newTestMailer(func(*email.Email, string, smtp.Auth) error {
		calls++
		return errRelay
	})
	msg := Message{To: []string{"a@b.c"}, Subject: "x"}

	assert.ErrorIs(t, m.Send(msg), errRelay)
	assert.ErrorIs(t, m.Send(msg), errRelay)
	assert.ErrorIs(t, m.Send(msg), ErrCircuitOpen)
	assert.Equal(t, 2, calls)
	assert.Equal(t, CBOpen, m.Breaker().State())
}
