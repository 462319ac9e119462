package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	emailAdapter "academy/internal/adapters/email"
	"academy/internal/domain/booking"
	"academy/internal/domain/outbox"
	"academy/internal/domain/pricing"
)

const (
	whatsAppBase   = "https://wa.me/"
	qrImageBase    = "https://api.qrserver.com/v1/create-qr-code/?size=250x250&data="
	handoffSubject = "Payment verification requested"
)

// ComposeWhatsAppMessage builds the message an athlete sends the admin after paying.
func ComposeWhatsAppMessage(b booking.Booking, athleteName string) string {
	if athleteName == "" {
		athleteName = b.UserName
	}
	return "Hello Academy Admin, I have completed the training payment.\n\n" +
		"*Ref:* " + b.ID + "\n" +
		"*Athlete:* " + athleteName + "\n" +
		"*Package:* " + b.Label() + "\n" +
		"*Amount:* " + pricing.FormatCurrency(b.Amount) + "\n\n" +
		"Please verify my transaction."
}

// WhatsAppLink returns a click-to-chat URL that opens number with message prefilled.
func WhatsAppLink(number, message string) string {
	digits := strings.TrimLeft(strings.TrimSpace(number), "+")
	return whatsAppBase + digits + "?text=" + url.QueryEscape(message)
}

// UPILink returns the UPI deep link a payment app opens for amount.
// UPI IDs are left unescaped since payment apps reject an encoded "@".
func UPILink(upiID, payee string, amount int64) string {
	return "upi://pay?pa=" + upiID + "&pn=" + url.PathEscape(payee) + "&am=" + strconv.FormatInt(amount, 10) + "&cu=INR"
}

// QRImageURL returns a hosted QR image for the UPI link.
func QRImageURL(upiLink string) string {
	return qrImageBase + url.QueryEscape(upiLink)
}

// EmailPayload is the outbox payload for ActionTypeEmail. The body is markdown.
type EmailPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Markdown string   `json:"markdown"`
}

// BookingReader loads a booking by ID.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
}

// HandoffInput carries input for the hand-off orchestrator.
type HandoffInput struct {
	BookingID   string
	AthleteName string
}

// HandoffDeps holds dependencies for Handoff.
type HandoffDeps struct {
	BookingStore   BookingReader
	Mailer         emailAdapter.Sender
	Outbox         OutboxWriter
	AdminEmail     string
	WhatsAppNumber string
	Now            func() time.Time
}

// HandoffResult reports what the hand-off produced.
type HandoffResult struct {
	Message     string
	WhatsAppURL string
	MessageID   string // provider ID when the email went out inline
	OutboxID    string // set when delivery was deferred to the outbox
}

// ExecuteHandoff tells the admin a payment is waiting for verification.
// PRE: booking exists
// POST: Admin emailed, or the email queued in the outbox; the WhatsApp link is always returned
func ExecuteHandoff(ctx context.Context, input HandoffInput, deps HandoffDeps) (HandoffResult, error) {
	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return HandoffResult{}, fmt.Errorf("load booking: %w", err)
	}

	msg := ComposeWhatsAppMessage(b, input.AthleteName)
	res := HandoffResult{
		Message:     msg,
		WhatsAppURL: WhatsAppLink(deps.WhatsAppNumber, msg),
	}
	if deps.AdminEmail == "" || deps.Mailer == nil {
		return res, nil
	}

	payload := EmailPayload{
		To:       []string{deps.AdminEmail},
		Subject:  handoffSubject + ": " + b.ID,
		Markdown: msg + "\n\n[Open WhatsApp chat](" + res.WhatsAppURL + ")",
	}
	sent, sendErr := sendEmailPayload(ctx, deps.Mailer, payload)
	if sendErr == nil {
		res.MessageID = sent.MessageID
		slog.Info("booking_event", "event", "handoff_sent", "booking_id", b.ID, "message_id", sent.MessageID)
		return res, nil
	}

	slog.Warn("booking_event", "event", "handoff_deferred", "booking_id", b.ID, "error", sendErr)
	if deps.Outbox == nil {
		return res, sendErr
	}
	id, err := enqueueOutbox(ctx, deps.Outbox, outbox.ActionTypeEmail, payload, nowOr(deps.Now))
	if err != nil {
		return res, fmt.Errorf("queue handoff email: %w", err)
	}
	res.OutboxID = id
	return res, nil
}

func sendEmailPayload(ctx context.Context, mailer emailAdapter.Sender, p EmailPayload) (emailAdapter.SendResult, error) {
	html, err := emailAdapter.RenderMarkdown(p.Markdown)
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	return mailer.Send(ctx, emailAdapter.SendRequest{
		To:      p.To,
		Subject: p.Subject,
		HTML:    html,
	})
}
