package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. It is used in
// development and keeps a copy of every request so tests can inspect it.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records and logs the email.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, req)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", n),
		SentAt:    time.Now(),
	}, nil
}

// Sent returns a copy of every request seen so far.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendRequest, len(s.sent))
	copy(out, s.sent)
	return out
}
