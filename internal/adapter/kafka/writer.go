// Package kafka publishes vessel position snapshots to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/vessel-tracking-service/internal/config"
	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
)

// Writer produces position messages to the sink topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSnapshot serializes and publishes a vessel snapshot in a single
// WriteMessages call. Empty snapshots publish nothing.
func (w *Writer) PublishSnapshot(ctx context.Context, positions []domain.VesselPosition) error {
	if len(positions) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(positions))
	for i := range positions {
		msg, err := serializeToMessage(positions[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a position into a Kafka message keyed by vessel
// ID, so per-vessel ordering holds within a partition.
func serializeToMessage(p domain.VesselPosition) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize vessel position: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.VesselID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "vessel_category", Value: []byte(p.VesselCategory)},
			{Key: "observed_at", Value: []byte(p.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
