package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
	"github.com/davidvella/dupnum/sstable"
)

const bufSize = 64 * 1024

// ErrOutOfOrder is returned when a run receives a record smaller than the
// previous one.
var ErrOutOfOrder = errors.New("run: records must be written in ascending order")

// Storage persists runs by name.
type Storage interface {
	// Create a new object for writing.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	// Open an object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
}

// Handle identifies a persisted run.
type Handle struct {
	Name    string
	Records int64
	// Bytes is the input text footprint of the run, newlines excluded.
	Bytes int64
}

// Writer writes one run. Records must arrive in ascending order.
type Writer struct {
	handle  Handle
	file    io.WriteCloser
	closers []func() error
	enc     recordio.Writer
	last    record.Record
	closed  bool
}

// Create creates the named run in store.
func Create(ctx context.Context, store Storage, name string, opts Options) (*Writer, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	file, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	w := &Writer{
		handle: Handle{Name: name},
		file:   file,
	}

	var dst io.Writer = file
	switch opts.Compression {
	case CompressionZstd:
		zw, err := zstd.NewWriter(dst, zstd.WithEncoderConcurrency(1))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("run: failed to create zstd writer: %w", err)
		}
		w.closers = append(w.closers, zw.Close)
		dst = zw
	case CompressionS2:
		sw := s2.NewWriter(dst, s2.WriterConcurrency(1))
		w.closers = append(w.closers, sw.Close)
		dst = sw
	}

	switch opts.Format {
	case FormatSSTable:
		tw, err := sstable.OpenWriter(dst, &sstable.Options{BufferSize: bufSize})
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("run: %w", err)
		}
		w.closers = append([]func() error{tw.Close}, w.closers...)
		w.enc = tw
	default:
		bw := bufio.NewWriterSize(dst, bufSize)
		w.closers = append([]func() error{bw.Flush}, w.closers...)
		if opts.Format == FormatCBOR {
			w.enc = recordio.NewCBORWriter(bw)
		} else {
			w.enc = recordio.NewTextWriter(bw)
		}
	}

	return w, nil
}

// Write appends rec to the run.
func (w *Writer) Write(rec record.Record) error {
	if w.closed {
		return fmt.Errorf("run: write to closed run %s", w.handle.Name)
	}
	if w.handle.Records > 0 && rec.Less(w.last) {
		return fmt.Errorf("%w: %s after %s in %s", ErrOutOfOrder, rec, w.last, w.handle.Name)
	}
	if err := w.enc.Write(rec); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	w.handle.Records++
	w.last = rec
	return nil
}

// AddBytes accounts n bytes of input text to the run.
func (w *Writer) AddBytes(n int64) {
	w.handle.Bytes += n
}

// Handle describes what has been written so far.
func (w *Writer) Handle() Handle {
	return w.handle
}

// Close flushes every layer and closes the underlying object.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs *multierror.Error
	for _, c := range w.closers {
		if err := c(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := w.file.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("run: failed to close %s: %w", w.handle.Name, err)
	}
	return nil
}

// Reader reads one run front to back.
type Reader struct {
	name    string
	file    io.ReadCloser
	closers []func()
	dec     recordio.Reader
	closed  bool
}

// Open opens the named run in store.
func Open(ctx context.Context, store Storage, name string, opts Options) (*Reader, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	file, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	r := &Reader{name: name, file: file}

	var src io.Reader = file
	switch opts.Compression {
	case CompressionZstd:
		zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("run: failed to create zstd reader: %w", err)
		}
		r.closers = append(r.closers, zr.Close)
		src = zr
	case CompressionS2:
		src = s2.NewReader(src)
	}

	switch opts.Format {
	case FormatSSTable:
		tr, err := sstable.OpenReader(src, &sstable.Options{BufferSize: bufSize})
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("run: %s: %w", name, err)
		}
		r.dec = tr
	case FormatCBOR:
		r.dec = recordio.NewCBORReader(bufio.NewReaderSize(src, bufSize))
	default:
		r.dec = recordio.NewTextReader(bufio.NewReaderSize(src, bufSize))
	}

	return r, nil
}

// Read returns the next record or io.EOF.
func (r *Reader) Read() (record.Record, error) {
	rec, err := r.dec.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("run: %s: %w", r.name, err)
	}
	return rec, err
}

// Close releases the reader. It does not delete the run.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for _, c := range r.closers {
		c()
	}
	return r.file.Close()
}

// WriteAll writes records into a new run and closes it.
func WriteAll(ctx context.Context, store Storage, name string, opts Options, records ...record.Record) (Handle, error) {
	w, err := Create(ctx, store, name, opts)
	if err != nil {
		return Handle{}, err
	}
	if err := recordio.WriteRecords(w, records...); err != nil {
		w.Close()
		return Handle{}, err
	}
	if err := w.Close(); err != nil {
		return Handle{}, err
	}
	return w.Handle(), nil
}

// ReadAll reads every record of the named run.
func ReadAll(ctx context.Context, store Storage, name string, opts Options) ([]record.Record, error) {
	r, err := Open(ctx, store, name, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return recordio.ReadRecords(r)
}
