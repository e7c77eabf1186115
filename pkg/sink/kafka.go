package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
)

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes every discovery as a JSON message keyed by place id.
type Kafka struct {
	writer messageWriter
	now    func() time.Time
	logger zerolog.Logger
}

// NewKafka creates a Kafka sink writing synchronously to topic.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  1,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newKafka(w, topic), nil
}

func newKafka(w messageWriter, topic string) *Kafka {
	return &Kafka{
		writer: w,
		now:    time.Now,
		logger: log.With().Str("component", "kafka-sink").Str("topic", topic).Logger(),
	}
}

// Emit implements Sink.
func (k *Kafka) Emit(ctx context.Context, place catalog.Place) error {
	value, err := json.Marshal(NewDiscovery(place, k.now()))
	if err != nil {
		return fmt.Errorf("marshal discovery: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(place.PlaceID, 10)),
		Value: value,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to kafka: %w", err)
	}

	k.logger.Debug().
		Uint64("place_id", place.PlaceID).
		Int("value_size", len(value)).
		Msg("Discovery published")

	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
