package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota // delivered
	Drop                   // malformed; never retry
	Requeue                // transport failure; retry later
)

// ProcessJob decodes one queued message and delivers it through sender.
func ProcessJob(ctx context.Context, body []byte, sender Sender) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("decode email job: %w", err)
	}
	if strings.TrimSpace(job.To) == "" {
		return Drop, ErrNoRecipient
	}
	if err := sender.Send(ctx, job.To, job.Subject, job.Text, job.HTML); err != nil {
		return Requeue, fmt.Errorf("send email job: %w", err)
	}
	return Ack, nil
}
