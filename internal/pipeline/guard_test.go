package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func() error
		wantErr string
		wantIs  error
	}{
		{name: "ok", fn: func() error { return nil }},
		{name: "error", fn: func() error { return errBoom }, wantErr: "boom", wantIs: errBoom},
		{name: "panic with error", fn: func() error { panic(errBoom) }, wantErr: "panic: boom", wantIs: errBoom},
		{name: "panic with value", fn: func() error { panic("index out of range") }, wantErr: "panic: index out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard(tt.fn)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestRunBlock_FailureIsIsolated(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := &Pipeline{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics,
	}
	view := &domain.FilteredView{Records: []domain.FloodRecord{{Year: 2015}}}

	panel := p.runBlock(BlockHistogram, view, func() error { panic("bad bin") })
	assert.Equal(t, BlockHistogram, panel.Block)
	assert.Equal(t, "Error: panic: bad bin", panel.Notice)
	assert.False(t, panel.Empty)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.BlockFailures.WithLabelValues(BlockHistogram)), 0)

	panel = p.runBlock(BlockWordCloud, view, func() error {
		return &domain.MissingColumnError{Column: domain.ColDetails}
	})
	assert.Equal(t, NoDetailsNotice, panel.Notice)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.BlockFailures.WithLabelValues(BlockWordCloud)), 0)

	panel = p.runBlock(BlockWordCloud, view, func() error { return domain.ErrNoWords })
	assert.Equal(t, "Error: "+domain.ErrNoWords.Error(), panel.Notice)
}
