package dupnum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/chunk"
	"github.com/davidvella/dupnum/dedup"
	"github.com/davidvella/dupnum/merge"
	"github.com/davidvella/dupnum/monitoring"
	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/run"
	"github.com/davidvella/dupnum/storage/local"
)

// Finder reports the values that occur more than once in a list of numbers
// too large to sort in memory.
type Finder struct {
	opts   options
	logger *slog.Logger
}

// New creates a finder with the given options.
func New(opts ...Option) (*Finder, error) {
	// Apply default options
	o := defaultOptions()

	// Apply user options
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := o.run.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	strategy, err := merge.ParseStrategy(string(o.merge))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	o.merge = strategy
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.stats == nil {
		o.stats = monitoring.Nop{}
	}

	return &Finder{
		opts:   o,
		logger: monitoring.Component(o.logger, "finder"),
	}, nil
}

// FindFile searches the file at path.
func (f *Finder) FindFile(ctx context.Context, path string) ([]record.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %w", ErrIO, err))
	}
	defer file.Close()

	size := int64(-1)
	if info, err := file.Stat(); err == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return f.Find(ctx, file, size)
}

// Find searches r. sizeHint is the total input size in bytes, or negative
// when unknown, and sizes the chunks. It returns the duplicated values in
// ascending order, printing each unless quiet. All intermediate data is
// removed before returning.
func (f *Finder) Find(ctx context.Context, r io.Reader, sizeHint int64) (duplicates []record.Record, err error) {
	store, closeStore, err := f.storage()
	if err != nil {
		return nil, f.fail(ctx, err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("%w: %w", ErrIO, cerr))
		}
		if err != nil {
			duplicates = nil
			err = f.fail(ctx, err)
		}
	}()

	handles, err := f.split(ctx, store, r, sizeHint)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		f.logger.Debug("empty input, nothing to merge")
		return []record.Record{}, nil
	}

	merged, err := f.merge(ctx, store, handles)
	if err != nil {
		return nil, err
	}

	return f.scan(ctx, store, merged)
}

func (f *Finder) storage() (run.Storage, func() error, error) {
	if f.opts.storage != nil {
		return f.opts.storage, func() error { return nil }, nil
	}
	s, err := local.NewLocalStorage(f.opts.tempDir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	f.logger.Debug("storage created", slog.String("dir", s.Dir()))
	return s, s.Close, nil
}

func (f *Finder) split(ctx context.Context, store run.Storage, r io.Reader, sizeHint int64) ([]run.Handle, error) {
	start := time.Now()

	strategy := f.opts.strategy
	if strategy == nil {
		threshold, err := chunk.Threshold(sizeHint, f.opts.budget)
		if err != nil {
			return nil, err
		}
		f.opts.stats.RecordThreshold(ctx, threshold)
		f.logger.Debug("chunk threshold",
			slog.String("input", humanize.IBytes(uint64(max(sizeHint, 0)))),
			slog.String("threshold", humanize.IBytes(uint64(threshold))))
		strategy = chunk.ByteBudget(threshold)
	}

	sorter := chunk.New(store, chunk.Options{
		Budget:   f.opts.budget,
		Strategy: strategy,
		Run:      f.opts.run,
		Logger:   f.opts.logger,
	})
	handles, err := sorter.Split(ctx, r, sizeHint)
	if err != nil {
		return nil, err
	}

	for _, h := range handles {
		f.opts.stats.RecordRunWritten(ctx, h.Records, h.Bytes)
	}
	f.opts.stats.RecordPhase(ctx, "split", time.Since(start))
	return handles, nil
}

func (f *Finder) merge(ctx context.Context, store run.Storage, handles []run.Handle) (run.Handle, error) {
	start := time.Now()

	h, res, err := merge.ToRun(ctx, store, handles, f.opts.run.MergedName(), merge.Options{
		Strategy: f.opts.merge,
		Run:      f.opts.run,
		Logger:   f.opts.logger,
	})
	if err != nil {
		return run.Handle{}, err
	}

	f.opts.stats.RecordMerged(ctx, res.Records)
	f.opts.stats.RecordPhase(ctx, "merge", time.Since(start))
	f.logger.Debug("runs merged",
		slog.Int("runs", res.Runs),
		slog.Int64("records", res.Records))
	return h, nil
}

func (f *Finder) scan(ctx context.Context, store run.Storage, merged run.Handle) (_ []record.Record, err error) {
	start := time.Now()

	defer func() {
		if derr := store.Delete(context.WithoutCancel(ctx), merged.Name); derr != nil {
			err = multierror.Append(err, fmt.Errorf("%w: %w", ErrIO, derr))
		}
	}()

	reader, err := run.Open(ctx, store, merged.Name, f.opts.run)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	collector := &dedup.Collector{Values: []record.Record{}}
	reporters := dedup.Multi{collector, dedup.Logger{Logger: f.logger}}
	reporters = append(reporters, f.opts.handlers...)

	res, err := dedup.Scan(ctx, reader, reporters)
	if err != nil {
		return nil, err
	}
	if res.Records != merged.Records {
		return nil, fmt.Errorf("%w: scanned %d records, merged %d", merge.ErrRecordCountMismatch, res.Records, merged.Records)
	}

	// Printed only once the whole stream has been checked, so a failed
	// search never leaves a partial report on the output.
	if !f.opts.quiet && f.opts.output != nil {
		printer := dedup.NewPrinter(f.opts.output)
		for _, v := range collector.Values {
			if err := printer.Report(ctx, v); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrIO, err)
			}
		}
	}

	f.opts.stats.RecordDuplicates(ctx, res.Duplicates)
	f.opts.stats.RecordPhase(ctx, "scan", time.Since(start))
	return collector.Values, nil
}

func (f *Finder) fail(ctx context.Context, err error) error {
	kind := Kind(err)
	f.opts.stats.RecordError(ctx, kind.String())
	if !errors.Is(err, context.Canceled) {
		f.logger.Debug("search failed", slog.String("kind", kind.String()), slog.Any("error", err))
	}
	return err
}

// FindFile searches the file at path with a finder built from opts.
func FindFile(ctx context.Context, path string, opts ...Option) ([]record.Record, error) {
	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return f.FindFile(ctx, path)
}
