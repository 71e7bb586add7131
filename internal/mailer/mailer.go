// Package mailer delivers confirmation codes. Senders are interchangeable:
// Mailgun sends directly, QueueSender hands the message to RabbitMQ for
// cmd/email-worker, and LogSender only logs (development).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("mailer: empty recipient")

// Sender delivers a single message. html is optional.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ConfirmationMessage renders the signup email carrying a confirmation code.
func ConfirmationMessage(username, code string, ttl time.Duration) (subject, text string) {
	subject = "Your yamdb confirmation code"
	text = fmt.Sprintf(
		"Hello %s,\n\nYour confirmation code is %s.\nExchange it for an access token at /api/v1/auth/token within %s.\n\nIf you did not sign up, ignore this message.\n",
		username, code, ttl.Round(time.Minute),
	)
	return subject, text
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{Log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, text, _ string) error {
	if to == "" {
		return ErrNoRecipient
	}
	s.Log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info(text)
	return nil
}
