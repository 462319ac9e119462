package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender with default from and reply-to addresses.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, fmt.Errorf("resend send: no recipients")
	}
	params := &resend.SendEmailRequest{
		From:    firstNonEmpty(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if replyTo := firstNonEmpty(req.ReplyTo, s.replyTo); replyTo != "" {
		params.ReplyTo = replyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", req.To, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
