package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/loser"
	"github.com/davidvella/dupnum/priority"
	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
	"github.com/davidvella/dupnum/run"
)

// checkInterval is how many records are merged between context checks.
const checkInterval = 4096

// ErrRecordCountMismatch is returned when the merged stream does not hold
// exactly the records of its runs.
var ErrRecordCountMismatch = errors.New("merge: record count mismatch")

// Options configures a merge.
type Options struct {
	// Strategy defaults to StrategyHeap.
	Strategy Strategy
	// Run must match the options the runs were written with.
	Run run.Options
	// Logger receives debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Result summarises a merge.
type Result struct {
	Runs    int
	Records int64
}

// Merge merges the sorted runs behind handles into w in ascending order.
// Every run is released as soon as it is exhausted; on error all runs still
// held are closed and deleted before returning. Equal values from different
// runs are emitted in no particular order.
func Merge(ctx context.Context, store run.Storage, handles []run.Handle, w recordio.Writer, opts Options) (res Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "merge"))

	res.Runs = len(handles)
	if len(handles) == 0 {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return res, err
	}

	cursors := make([]*run.Cursor, 0, len(handles))
	defer func() {
		if cerr := run.CloseAll(cursors...); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	var expected int64
	for _, h := range handles {
		c, err := run.OpenCursor(ctx, store, h, opts.Run)
		if err != nil {
			return res, err
		}
		cursors = append(cursors, c)
		expected += h.Records
	}

	logger.Debug("merging runs",
		slog.Int("runs", len(cursors)),
		slog.String("strategy", string(strategy)),
		slog.Int64("records", expected))

	if strategy == StrategyLoser {
		res.Records, err = mergeLoser(ctx, cursors, w)
	} else {
		res.Records, err = mergeHeap(ctx, cursors, w)
	}
	if err != nil {
		return res, err
	}

	if res.Records != expected {
		return res, fmt.Errorf("%w: merged %d records from runs holding %d", ErrRecordCountMismatch, res.Records, expected)
	}
	return res, nil
}

func lessCursor(a, b *run.Cursor) bool {
	return a.Peek().Less(b.Peek())
}

func mergeHeap(ctx context.Context, cursors []*run.Cursor, w recordio.Writer) (int64, error) {
	queue := priority.NewHeapWithCapacity(len(cursors), lessCursor)
	for _, c := range cursors {
		if !c.Exhausted() {
			queue.Push(c)
		}
	}

	var n int64
	for {
		c, ok := queue.Pop()
		if !ok {
			return n, nil
		}
		if err := w.Write(c.Peek()); err != nil {
			return n, fmt.Errorf("merge: failed to write record: %w", err)
		}
		n++
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}

		if c.Advance() {
			queue.Push(c)
		} else if err := c.Err(); err != nil {
			return n, err
		}
	}
}

func mergeLoser(ctx context.Context, cursors []*run.Cursor, w recordio.Writer) (int64, error) {
	sequences := make([]loser.Sequence[record.Record], len(cursors))
	for i, c := range cursors {
		sequences[i] = c
	}
	tree := loser.New(sequences, record.Less)

	var n int64
	for rec := range tree.All() {
		if err := w.Write(rec); err != nil {
			return n, fmt.Errorf("merge: failed to write record: %w", err)
		}
		n++
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
	}

	// A cursor that fails simply ends its sequence, so look for errors once
	// the tree is drained.
	for _, c := range cursors {
		if err := c.Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ToRun merges handles into a new run called name and returns its handle.
// The merged run is deleted if the merge fails.
func ToRun(ctx context.Context, store run.Storage, handles []run.Handle, name string, opts Options) (run.Handle, Result, error) {
	w, err := run.Create(ctx, store, name, opts.Run)
	if err != nil {
		return run.Handle{}, Result{}, err
	}

	res, err := Merge(ctx, store, handles, w, opts)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if derr := store.Delete(context.WithoutCancel(ctx), name); derr != nil {
			err = multierror.Append(err, derr)
		}
		return run.Handle{}, res, err
	}

	h := w.Handle()
	for _, in := range handles {
		h.Bytes += in.Bytes
	}
	return h, res, nil
}
