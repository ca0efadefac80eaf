package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/email"
)

type recordingSender struct {
	sent []email.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestHandler(sender Sender) *NotificationHandler {
	return NewNotificationHandler(sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleRoutesByTopic(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(sender)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, domain.TopicOtpRequested,
		mustJSON(t, domain.OtpRequestedEvent{Email: "a@b.com", Code: "123456"})))
	require.NoError(t, h.Handle(ctx, domain.TopicOrderPlaced, mustJSON(t, domain.OrderPlacedEvent{
		OrderID:     "o1",
		Email:       "c@d.com",
		Items:       []domain.OrderItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)}},
		TotalAmount: decimal.NewFromInt(20),
	})))
	require.NoError(t, h.Handle(ctx, "something.else", []byte(`{}`)))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@b.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "123456")
	assert.Equal(t, "c@d.com", sender.sent[1].To)
	assert.Contains(t, sender.sent[1].Subject, "o1")
	assert.Contains(t, sender.sent[1].Body, "Total: 20.00")
}

func TestHandleSkipsMalformedPayload(t *testing.T) {
	sender := &recordingSender{}

	err := newTestHandler(sender).Handle(context.Background(), domain.TopicOrderPlaced, []byte(`{"order_id":`))

	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleReturnsSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("sink down")}

	err := newTestHandler(sender).Handle(context.Background(), domain.TopicOtpRequested,
		mustJSON(t, domain.OtpRequestedEvent{Email: "a@b.com", Code: "123456"}))

	assert.Error(t, err)
}
