package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/record"
)

// Cursor is a forward-only view over one run. It always holds the current
// head record until the run is exhausted, at which point the run is closed and
// deleted from storage. A cursor cannot be restarted.
type Cursor struct {
	ctx       context.Context
	store     Storage
	handle    Handle
	reader    *Reader
	head      record.Record
	exhausted bool
	released  bool
	read      int64
	err       error
}

// OpenCursor opens the run behind h and eagerly loads its first record. An
// empty run yields a cursor that is already exhausted and released.
func OpenCursor(ctx context.Context, store Storage, h Handle, opts Options) (*Cursor, error) {
	reader, err := Open(ctx, store, h.Name, opts)
	if err != nil {
		return nil, err
	}

	c := &Cursor{
		ctx:    ctx,
		store:  store,
		handle: h,
		reader: reader,
	}
	c.Advance()
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// Handle returns the run the cursor reads.
func (c *Cursor) Handle() Handle {
	return c.handle
}

// Peek returns the current head without consuming it. The result is
// meaningless once the cursor is exhausted.
func (c *Cursor) Peek() record.Record {
	return c.head
}

// Exhausted reports whether the run has no more records.
func (c *Cursor) Exhausted() bool {
	return c.exhausted
}

// Count returns the number of records loaded from the run so far.
func (c *Cursor) Count() int64 {
	return c.read
}

// Err returns the first read or release error.
func (c *Cursor) Err() error {
	return c.err
}

// Advance drops the current head and loads the next record. It reports
// whether a new head is available. At the end of the run, or on error, the
// cursor becomes exhausted and releases its run.
func (c *Cursor) Advance() bool {
	if c.exhausted {
		return false
	}

	rec, err := c.reader.Read()
	switch {
	case err == nil:
		c.head = rec
		c.read++
		return true
	case errors.Is(err, io.EOF):
		if c.handle.Records > 0 && c.read != c.handle.Records {
			c.err = fmt.Errorf("run: %s: read %d records, want %d", c.handle.Name, c.read, c.handle.Records)
		}
	default:
		c.err = err
	}

	c.exhausted = true
	if err := c.release(); err != nil && c.err == nil {
		c.err = err
	}
	return false
}

// All yields the remaining records, advancing the cursor as it goes.
// Check Err after iterating.
func (c *Cursor) All() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for !c.exhausted {
			if !yield(c.head) {
				return
			}
			c.Advance()
		}
	}
}

// Close releases the run if the cursor still holds it. It is safe to call
// any number of times.
func (c *Cursor) Close() error {
	c.exhausted = true
	return c.release()
}

func (c *Cursor) release() error {
	if c.released {
		return nil
	}
	c.released = true

	var errs *multierror.Error
	if err := c.reader.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.store.Delete(context.WithoutCancel(c.ctx), c.handle.Name); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("run: failed to release %s: %w", c.handle.Name, err)
	}
	return nil
}

// CloseAll closes every cursor, collecting errors.
func CloseAll(cursors ...*Cursor) error {
	var errs *multierror.Error
	for _, c := range cursors {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
