package otp

import (
	"context"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/email"
)

// Dispatcher delivers a freshly issued code to its owner.
type Dispatcher interface {
	Dispatch(ctx context.Context, to, code string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// EventDispatcher hands the code to the notifier through an otp.requested
// event.
type EventDispatcher struct {
	publisher Publisher
}

func NewEventDispatcher(publisher Publisher) *EventDispatcher {
	return &EventDispatcher{publisher: publisher}
}

func (d *EventDispatcher) Dispatch(ctx context.Context, to, code string) error {
	event := domain.OtpRequestedEvent{Email: to, Code: code, Timestamp: time.Now().UTC()}
	return d.publisher.Publish(ctx, domain.TopicOtpRequested, to, event)
}

type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

// MailDispatcher sends the code straight to the mail sink. It is used when
// no broker is configured.
type MailDispatcher struct {
	sender Sender
}

func NewMailDispatcher(sender Sender) *MailDispatcher {
	return &MailDispatcher{sender: sender}
}

func (d *MailDispatcher) Dispatch(ctx context.Context, to, code string) error {
	return d.sender.Send(ctx, email.OtpMessage(to, code))
}
