// Package kafka publishes urgent flood alerts to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ksandaruwan/floodwatch/internal/domain"
)

// Writer produces alert messages to a Kafka topic.
// It implements assessor.AlertPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the alerts topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes the news items for one location in
// a single WriteMessages call. Messages for the same coordinate share a key
// so they land on one partition in order.
func (w *Writer) PublishAlerts(ctx context.Context, coord domain.Coordinate, items []domain.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(items))
	for i := range items {
		msg, err := serializeToMessage(coord, items[i])
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

// serializeToMessage marshals a NewsItem into a Kafka message.
func serializeToMessage(coord domain.Coordinate, item domain.NewsItem) (kafkago.Message, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%.4f,%.4f", coord.Lat, coord.Lon)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(item.Type)},
			{Key: "generated_at", Value: []byte(item.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
