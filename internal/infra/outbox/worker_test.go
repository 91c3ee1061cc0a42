package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "chat.events.v1", w.topicFor("chat.message_sent"))
	assert.Equal(t, "offer.events.v1", w.topicFor("offer.published"))
	assert.Equal(t, "ping.events.v1", w.topicFor("ping"))

	w.TopicPrefix = "staging."
	assert.Equal(t, "staging.chat.events.v1", w.topicFor("chat.message_sent"))
}

func TestFormatPayloadBuildsEnvelope(t *testing.T) {
	w := &Worker{}
	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := &EventDocument{
		ID:         "evt-1",
		Name:       "chat.message_sent",
		Aggregate:  "conv-1",
		Payload:    []byte(`{"message_id":"m1"}`),
		OccurredAt: occurred,
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := w.formatPayload(doc)
	require.NoError(t, err)
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "chat.message_sent.v1", envelope["type"])
	assert.Equal(t, "app://riderlink", envelope["source"])
	assert.Equal(t, "00-abc-def-01", envelope["traceparent"])
	assert.NotEmpty(t, envelope["id"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "m1", data["message_id"])
}

func TestFormatPayloadRejectsMalformedPayload(t *testing.T) {
	w := &Worker{}
	_, _, err := w.formatPayload(&EventDocument{Payload: []byte("not json")})
	assert.Error(t, err)
}

func TestRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}

func TestNextRetryLadder(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}

	first := w.nextRetry(0)
	assert.WithinDuration(t, time.Now().Add(time.Second), first, 100*time.Millisecond)

	second := w.nextRetry(1)
	assert.WithinDuration(t, time.Now().Add(time.Minute), second, 100*time.Millisecond)

	// Past the end of the ladder the last step repeats.
	later := w.nextRetry(10)
	assert.WithinDuration(t, time.Now().Add(time.Minute), later, 100*time.Millisecond)
}
