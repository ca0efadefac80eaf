package messaging

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}
	c := NewMessageCarrier(&msg)

	c.Set("traceparent", "new")
	c.Set("tracestate", "k=v")

	assert.Equal(t, "new", c.Get("traceparent"))
	assert.Equal(t, "k=v", c.Get("tracestate"))
	assert.Empty(t, c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}
