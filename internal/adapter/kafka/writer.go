package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Message headers set on every exported record.
const (
	HeaderMainCause  = "main_cause"
	HeaderExportID   = "export_id"
	HeaderExportedAt = "exported_at"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Export describes one completed publish of a filtered view.
type Export struct {
	ID         string    `json:"export_id"`
	Records    int       `json:"records"`
	Topic      string    `json:"topic"`
	ExportedAt time.Time `json:"exported_at"`
}

// Writer publishes flood records to a Kafka topic, one JSON message per record.
type Writer struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaExportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, topic: cfg.KafkaExportTopic, logger: logger, metrics: metrics}
}

// Export serializes and publishes records in a single WriteMessages call.
// All messages of one call share an export id and timestamp.
func (w *Writer) Export(ctx context.Context, records []domain.FloodRecord) (Export, error) {
	exp := Export{
		ID:         uuid.NewString(),
		Records:    len(records),
		Topic:      w.topic,
		ExportedAt: domain.Now().UTC(),
	}
	if len(records) == 0 {
		return exp, nil
	}

	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i], exp)
		if err != nil {
			return Export{}, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return Export{}, fmt.Errorf("publish %d records to %s: %w", len(msgs), w.topic, err)
	}

	w.metrics.RecordsExported.Add(float64(len(msgs)))
	w.logger.Info("records exported", "export_id", exp.ID, "topic", w.topic, "records", len(msgs))
	return exp, nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FloodRecord into a Kafka message keyed by record ID.
func serializeToMessage(rec domain.FloodRecord, exp Export) (kafkago.Message, error) {
	if rec.ID == "" {
		rec.ID = domain.GenerateID(rec)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize flood record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderMainCause, Value: []byte(rec.MainCause)},
			{Key: HeaderExportID, Value: []byte(exp.ID)},
			{Key: HeaderExportedAt, Value: []byte(exp.ExportedAt.Format(time.RFC3339))},
		},
	}, nil
}
