package chunk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/btree"
	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
	"github.com/davidvella/dupnum/run"
)

// checkInterval is how many records are read between context checks.
const checkInterval = 4096

// Options configures a Sorter.
type Options struct {
	// Budget sizes chunks from the input size hint. Ignored when Strategy is set.
	Budget Budget
	// Strategy overrides the budget derived flush policy.
	Strategy Strategy
	// Run selects the run format and compression.
	Run run.Options
	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Sorter splits an input stream into sorted runs.
type Sorter struct {
	store  run.Storage
	opts   Options
	logger *slog.Logger
}

func New(store run.Storage, opts Options) *Sorter {
	if opts.Budget == (Budget{}) {
		opts.Budget = DefaultBudget()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sorter{
		store:  store,
		opts:   opts,
		logger: logger.With(slog.String("component", "chunk")),
	}
}

// entry orders equal values by arrival so the buffer keeps every copy.
type entry struct {
	value record.Record
	seq   int64
}

func lessEntry(a, b entry) bool {
	if c := record.Compare(a.value, b.value); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

type chunk struct {
	records *btree.BTreeG[entry]
	bytes   int64
	seq     int64
}

func newChunk() *chunk {
	return &chunk{records: btree.NewG[entry](32, lessEntry)}
}

func (c *chunk) add(rec record.Record, n int64) {
	c.records.ReplaceOrInsert(entry{value: rec, seq: c.seq})
	c.seq++
	c.bytes += n
}

func (c *chunk) info(next int64) Information {
	return Information{Records: int64(c.records.Len()), Bytes: c.bytes, Next: next}
}

func (c *chunk) reset() {
	c.records.Clear(true)
	c.bytes = 0
}

// Split reads r to the end and writes its records to sorted runs. sizeHint
// is the total input size in bytes, or negative when unknown. Blank lines are
// skipped. On error every run written so far is deleted.
func (s *Sorter) Split(ctx context.Context, r io.Reader, sizeHint int64) (handles []run.Handle, err error) {
	strategy := s.opts.Strategy
	if strategy == nil {
		threshold, err := Threshold(sizeHint, s.opts.Budget)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("chunk threshold computed",
			slog.Int64("size_hint", sizeHint),
			slog.Int64("threshold", threshold))
		strategy = ByteBudget(threshold)
	}

	defer func() {
		if err != nil {
			if cerr := s.remove(handles); cerr != nil {
				err = multierror.Append(err, cerr)
			}
			handles = nil
		}
	}()

	var (
		lines = recordio.NewLineReader(r)
		buf   = newChunk()
		count int64
	)
	for {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return handles, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if record.IsBlank(line) {
			continue
		}

		rec, err := record.Parse(line)
		if err != nil {
			var pe *record.ParseError
			if errors.As(err, &pe) {
				pe.Line = lines.Line()
			}
			return handles, err
		}

		count++
		if count%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return handles, err
			}
		}

		n := int64(len(line))
		if strategy.ShouldFlush(buf.info(n)) {
			h, err := s.flush(ctx, buf, len(handles))
			if err != nil {
				return handles, err
			}
			handles = append(handles, h)
		}
		buf.add(rec, n)
	}

	if buf.records.Len() > 0 {
		h, err := s.flush(ctx, buf, len(handles))
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}

	s.logger.Debug("input split",
		slog.Int("runs", len(handles)),
		slog.Int64("records", count))
	return handles, nil
}

func (s *Sorter) flush(ctx context.Context, buf *chunk, index int) (run.Handle, error) {
	if err := ctx.Err(); err != nil {
		return run.Handle{}, err
	}

	name := s.opts.Run.Name(index)
	w, err := run.Create(ctx, s.store, name, s.opts.Run)
	if err != nil {
		return run.Handle{}, err
	}

	var writeErr error
	buf.records.Ascend(func(e entry) bool {
		if err := w.Write(e.value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	w.AddBytes(buf.bytes)

	var errs *multierror.Error
	if writeErr != nil {
		errs = multierror.Append(errs, writeErr)
	}
	if err := w.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs.ErrorOrNil() != nil {
		if err := s.store.Delete(context.WithoutCancel(ctx), name); err != nil {
			errs = multierror.Append(errs, err)
		}
		return run.Handle{}, errs.ErrorOrNil()
	}

	h := w.Handle()
	s.logger.Debug("run written",
		slog.String("run", h.Name),
		slog.Int64("records", h.Records),
		slog.Int64("bytes", h.Bytes))
	buf.reset()
	return h, nil
}

func (s *Sorter) remove(handles []run.Handle) error {
	var errs *multierror.Error
	for _, h := range handles {
		if err := s.store.Delete(context.Background(), h.Name); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
