// Package notify turns storefront events into emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/email"
)

// Topics the notifier subscribes to.
var Topics = []string{domain.TopicOtpRequested, domain.TopicOrderPlaced}

type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

type NotificationHandler struct {
	sender Sender
	logger *slog.Logger
}

func NewNotificationHandler(sender Sender, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{sender: sender, logger: logger}
}

// Handle routes one message by topic. Undecodable payloads are logged and
// skipped; a failed send is returned so the message is not committed.
func (h *NotificationHandler) Handle(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case domain.TopicOtpRequested:
		var event domain.OtpRequestedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.logger.Error("failed to decode otp requested event", "error", err)
			return nil
		}
		return h.sendOtp(ctx, event)
	case domain.TopicOrderPlaced:
		var event domain.OrderPlacedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.logger.Error("failed to decode order placed event", "error", err)
			return nil
		}
		return h.sendConfirmation(ctx, event)
	default:
		h.logger.Warn("ignoring message from unknown topic", "topic", topic)
		return nil
	}
}

func (h *NotificationHandler) sendOtp(ctx context.Context, event domain.OtpRequestedEvent) error {
	if err := h.sender.Send(ctx, email.OtpMessage(event.Email, event.Code)); err != nil {
		h.logger.Error("failed to send otp email", "error", err, "email", event.Email)
		return fmt.Errorf("send otp email: %w", err)
	}

	h.logger.Info("otp email sent", "email", event.Email)
	return nil
}

func (h *NotificationHandler) sendConfirmation(ctx context.Context, event domain.OrderPlacedEvent) error {
	if event.Email == "" {
		h.logger.Warn("order placed without customer email", "order_id", event.OrderID)
		return nil
	}

	if err := h.sender.Send(ctx, email.OrderConfirmation(event)); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("order confirmation sent", "order_id", event.OrderID, "customer_id", event.CustomerID)
	return nil
}
