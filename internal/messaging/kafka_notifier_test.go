package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"paycompliance/internal/events"
	"paycompliance/internal/messaging"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaNotifier_PublishesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	n := messaging.NewKafkaNotifier(w, "", nil)

	event := events.OvertimeEvent{EventType: events.EventOvertimeApproved, RequestID: "req-1", Status: "APPROVED"}
	require.NoError(t, n.NotifyOvertime(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, events.OvertimeRequestTopic, msg.Topic)
	assert.Equal(t, "req-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, events.EventOvertimeApproved, string(msg.Headers[0].Value))

	var decoded events.OvertimeEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaNotifier_SurvivesCancelledRequest(t *testing.T) {
	w := &fakeWriter{}
	n := messaging.NewKafkaNotifier(w, "custom.topic", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, n.NotifyOvertime(ctx, events.OvertimeEvent{RequestID: "req-2"}))
	assert.Equal(t, "custom.topic", w.msgs[0].Topic)
}

func TestKafkaNotifier_ReturnsWriterError(t *testing.T) {
	n := messaging.NewKafkaNotifier(&fakeWriter{err: errors.New("leader not available")}, "", nil)
	assert.Error(t, n.NotifyOvertime(context.Background(), events.OvertimeEvent{RequestID: "req-3"}))
}
