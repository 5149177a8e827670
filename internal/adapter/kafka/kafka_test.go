package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	calls  int
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestWriter(fw *fakeWriter) (*Writer, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return &Writer{
		writer:  fw,
		topic:   "flood-events",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics,
	}, metrics
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fakeClock
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	rec := domain.FloodRecord{
		ID:        "abc123",
		Year:      2015,
		Location:  "Chennai",
		Latitude:  13.08,
		Longitude: 80.27,
		MainCause: "Heavy Rain",
		Duration:  math.NaN(),
	}

	msg, err := serializeToMessage(rec, Export{ID: "exp-1", ExportedAt: now})
	require.NoError(t, err)

	assert.Equal(t, []byte("abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"duration":null`)
	assert.Contains(t, string(msg.Value), `"location":"Chennai"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, HeaderMainCause, msg.Headers[0].Key)
	assert.Equal(t, []byte("Heavy Rain"), msg.Headers[0].Value)
	assert.Equal(t, HeaderExportID, msg.Headers[1].Key)
	assert.Equal(t, []byte("exp-1"), msg.Headers[1].Value)
	assert.Equal(t, HeaderExportedAt, msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_GeneratesMissingID(t *testing.T) {
	rec := domain.FloodRecord{Year: 2010, Location: "Patna", MainCause: "Dam Break", Duration: 3}

	msg, err := serializeToMessage(rec, Export{ID: "exp-1"})
	require.NoError(t, err)
	assert.Equal(t, []byte(domain.GenerateID(rec)), msg.Key)
}

func TestWriter_Export(t *testing.T) {
	fakeClock := freezeClock(t)
	fw := &fakeWriter{}
	w, metrics := newTestWriter(fw)

	records := []domain.FloodRecord{
		{ID: "a", Year: 2005, Location: "Mumbai", MainCause: "Heavy Rain", Duration: 5},
		{ID: "b", Year: 2015, Location: "Chennai", MainCause: "Cyclone", Duration: 14},
	}
	exp, err := w.Export(context.Background(), records)
	require.NoError(t, err)

	_, err = uuid.Parse(exp.ID)
	require.NoError(t, err, "export id should be a uuid")
	assert.Equal(t, 2, exp.Records)
	assert.Equal(t, "flood-events", exp.Topic)
	assert.Equal(t, fakeClock.Now(), exp.ExportedAt)

	assert.Equal(t, 1, fw.calls, "records go out in one batch")
	require.Len(t, fw.msgs, 2)
	for _, msg := range fw.msgs {
		assert.Equal(t, []byte(exp.ID), msg.Headers[1].Value)
	}
	assert.Equal(t, []byte("Cyclone"), fw.msgs[1].Headers[0].Value)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RecordsExported), 0)
}

func TestWriter_Export_Empty(t *testing.T) {
	fw := &fakeWriter{}
	w, metrics := newTestWriter(fw)

	exp, err := w.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, exp.Records)
	assert.Equal(t, 0, fw.calls)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RecordsExported), 0)
}

func TestWriter_Export_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w, metrics := newTestWriter(fw)

	_, err := w.Export(context.Background(), []domain.FloodRecord{{ID: "a", MainCause: "Heavy Rain"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Contains(t, err.Error(), "flood-events")
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RecordsExported), 0)
}

func TestWriter_Close(t *testing.T) {
	fw := &fakeWriter{}
	w, _ := newTestWriter(fw)
	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaExportTopic: "exports"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	t.Cleanup(func() { _ = w.Close() })

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "exports", kw.Topic)
	assert.Equal(t, "exports", w.topic)
}
