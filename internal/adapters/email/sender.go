package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default, e.g. "DribbleGround Academy <noreply@dribbleground.in>"
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
