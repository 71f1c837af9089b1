package messaging

import (
	"context"
	"encoding/json"
	"time"

	"paycompliance/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is satisfied by *kafkago.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// KafkaNotifier publishes overtime events keyed by request id, so every
// event of one request lands on the same partition in order.
type KafkaNotifier struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewKafkaNotifier(writer MessageWriter, topic string, logger *zap.Logger) *KafkaNotifier {
	if topic == "" {
		topic = events.OvertimeRequestTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaNotifier{writer: writer, topic: topic, timeout: 5 * time.Second, logger: logger.Named("kafka.notifier")}
}

// NewWriter builds the producer used in production.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func (n *KafkaNotifier) NotifyOvertime(ctx context.Context, event events.OvertimeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Topic: n.topic,
		Key:   []byte(event.RequestID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte("overtime_request")},
		},
	}

	// Detached from the request so a client disconnect does not drop the event.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.writer.WriteMessages(writeCtx, msg); err != nil {
		return err
	}
	n.logger.Debug("overtime event published",
		zap.String("event_type", event.EventType),
		zap.String("request_id", event.RequestID),
		zap.String("topic", n.topic),
	)
	return nil
}
