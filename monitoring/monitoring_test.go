package monitoring_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/davidvella/dupnum/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := monitoring.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := monitoring.NewLogger(&buf, "info", monitoring.FormatJSON)
	require.NoError(t, err)

	logger = monitoring.Component(logger, "merge")
	logger.Debug("hidden")
	logger.Info("merged", slog.Int("runs", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "merged", entry["msg"])
	assert.Equal(t, "merge", entry["component"])
	assert.InDelta(t, 3, entry["runs"], 0)
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := monitoring.NewLogger(&buf, "debug", "")
	require.NoError(t, err)

	logger.Debug("split", slog.Int("runs", 2))
	assert.Contains(t, buf.String(), "msg=split runs=2")
}

func TestNewLoggerUnknownFormat(t *testing.T) {
	_, err := monitoring.NewLogger(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := monitoring.NewRegistry()
	r.Register(monitoring.Metric{Name: "c", Type: monitoring.Counter})
	r.Register(monitoring.Metric{Name: "g", Type: monitoring.Gauge})

	r.Add("c", 2, nil)
	r.Add("c", 3, nil)
	r.Add("unknown", 1, nil)
	r.Add("g", 10, nil)
	r.Set("g", 4, nil)
	r.Set("g", 5, nil)
	r.Set("c", 100, nil)

	assert.InDelta(t, 5, r.Total("c"), 0)
	assert.InDelta(t, 5, r.Total("g"), 0)
	assert.Zero(t, r.Total("unknown"))
	assert.Equal(t, []string{"c", "g"}, r.Names())
	assert.Len(t, r.GetMetrics()["c"], 2)

	m, ok := r.Metric("g")
	require.True(t, ok)
	assert.Equal(t, "gauge", m.Type.String())
}

func TestStatsSummary(t *testing.T) {
	ctx := context.Background()
	r := monitoring.NewRegistry()
	s := monitoring.NewStats(r)

	s.RecordThreshold(ctx, 2<<20)
	s.RecordRunWritten(ctx, 1000, 4000)
	s.RecordRunWritten(ctx, 500, 2000)
	s.RecordMerged(ctx, 1500)
	s.RecordDuplicates(ctx, 6)
	s.RecordPhase(ctx, "split", 1500*time.Millisecond)
	s.RecordError(ctx, "io")

	assert.InDelta(t, 2, r.Total(monitoring.MetricRunsWritten), 0)
	assert.InDelta(t, 1, r.Total(monitoring.MetricErrors), 0)

	var buf bytes.Buffer
	require.NoError(t, monitoring.WriteSummary(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "runs: 2\n")
	assert.Contains(t, out, "split: 1,500 records, 5.9 KiB\n")
	assert.Contains(t, out, "merged: 1,500 records\n")
	assert.Contains(t, out, "duplicates: 6\n")
	assert.Contains(t, out, "threshold: 2.0 MiB\n")
	assert.Contains(t, out, "split time: 1.5s\n")
	assert.Contains(t, out, "merge time: 0s\n")
}
