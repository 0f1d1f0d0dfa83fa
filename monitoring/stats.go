package monitoring

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	MetricRunsWritten   = "runs_written_total"
	MetricBytesSplit    = "bytes_split_total"
	MetricRecordsSplit  = "records_split_total"
	MetricRecordsMerged = "records_merged_total"
	MetricDuplicates    = "duplicates_found_total"
	MetricPhaseDuration = "phase_duration_ms"
	MetricErrors        = "errors_total"
	MetricThreshold     = "chunk_threshold_bytes"
)

// Stats collects processing statistics for one invocation.
type Stats interface {
	RecordThreshold(ctx context.Context, bytes int64)
	RecordRunWritten(ctx context.Context, records, bytes int64)
	RecordMerged(ctx context.Context, records int64)
	RecordDuplicates(ctx context.Context, count int64)
	RecordPhase(ctx context.Context, phase string, d time.Duration)
	RecordError(ctx context.Context, kind string)
}

type stats struct {
	registry *Registry
}

var _ Stats = (*stats)(nil)

// NewStats registers the processing metrics in registry.
func NewStats(registry *Registry) Stats {
	for _, m := range []Metric{
		{Name: MetricRunsWritten, Type: Counter, Description: "Number of sorted runs written"},
		{Name: MetricBytesSplit, Type: Counter, Description: "Input bytes written to runs"},
		{Name: MetricRecordsSplit, Type: Counter, Description: "Records written to runs"},
		{Name: MetricRecordsMerged, Type: Counter, Description: "Records written to the merged stream"},
		{Name: MetricDuplicates, Type: Counter, Description: "Distinct duplicated values found"},
		{Name: MetricPhaseDuration, Type: Histogram, Description: "Duration of each phase in milliseconds"},
		{Name: MetricErrors, Type: Counter, Description: "Errors by kind"},
		{Name: MetricThreshold, Type: Gauge, Description: "Chunk flush threshold in bytes"},
	} {
		registry.Register(m)
	}
	return &stats{registry: registry}
}

func (s *stats) RecordThreshold(_ context.Context, bytes int64) {
	s.registry.Set(MetricThreshold, float64(bytes), nil)
}

func (s *stats) RecordRunWritten(_ context.Context, records, bytes int64) {
	s.registry.Add(MetricRunsWritten, 1, nil)
	s.registry.Add(MetricRecordsSplit, float64(records), nil)
	s.registry.Add(MetricBytesSplit, float64(bytes), nil)
}

func (s *stats) RecordMerged(_ context.Context, records int64) {
	s.registry.Add(MetricRecordsMerged, float64(records), nil)
}

func (s *stats) RecordDuplicates(_ context.Context, count int64) {
	s.registry.Add(MetricDuplicates, float64(count), nil)
}

func (s *stats) RecordPhase(_ context.Context, phase string, d time.Duration) {
	s.registry.Add(MetricPhaseDuration, float64(d.Milliseconds()), map[string]string{"phase": phase})
}

func (s *stats) RecordError(_ context.Context, kind string) {
	s.registry.Add(MetricErrors, 1, map[string]string{"kind": kind})
}

// Nop is a Stats that records nothing.
type Nop struct{}

func (Nop) RecordThreshold(context.Context, int64)             {}
func (Nop) RecordRunWritten(context.Context, int64, int64)     {}
func (Nop) RecordMerged(context.Context, int64)                {}
func (Nop) RecordDuplicates(context.Context, int64)            {}
func (Nop) RecordPhase(context.Context, string, time.Duration) {}
func (Nop) RecordError(context.Context, string)                {}

// WriteSummary prints a human readable summary of registry.
func WriteSummary(w io.Writer, registry *Registry) error {
	phases := make(map[string]float64)
	for _, v := range registry.GetMetrics()[MetricPhaseDuration] {
		phases[v.Labels["phase"]] += v.Value
	}

	_, err := fmt.Fprintf(w,
		"runs: %s\nsplit: %s records, %s\nmerged: %s records\nduplicates: %s\nthreshold: %s\nsplit time: %s\nmerge time: %s\nscan time: %s\n",
		humanize.Comma(int64(registry.Total(MetricRunsWritten))),
		humanize.Comma(int64(registry.Total(MetricRecordsSplit))),
		humanize.IBytes(uint64(registry.Total(MetricBytesSplit))),
		humanize.Comma(int64(registry.Total(MetricRecordsMerged))),
		humanize.Comma(int64(registry.Total(MetricDuplicates))),
		humanize.IBytes(uint64(registry.Total(MetricThreshold))),
		time.Duration(phases["split"])*time.Millisecond,
		time.Duration(phases["merge"])*time.Millisecond,
		time.Duration(phases["scan"])*time.Millisecond,
	)
	return err
}
