// Package sstable - Sorted String Table (SSTable) is one of the most popular
// outputs for storing, processing, and exchanging datasets. As the name itself
// implies, an SSTable is a simple abstraction to efficiently store large
// numbers of records while optimizing for high throughput, sequential
// read/write workloads.
//
// Here a table holds one sorted run of numbers. Tables are written front to
// back in a single pass and read front to back exactly once, so the format
// carries no index: a trailer records the number of records, which lets the
// reader detect truncated or tampered tables without seeking.
package sstable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
)

// Common errors that can be returned by SSTable operations.
var (
	ErrTableClosed    = errors.New("sstable: table already closed")
	ErrCorruptedTable = errors.New("sstable: corrupted table data")
	ErrWriteError     = errors.New("sstable: records must be written in sorted order")
)

// File format constants.
const (
	magicHeader    = int64(0x53535442) // "SSTB" in hex
	magicFooter    = int64(0x454E4442) // "ENDB" in hex
	formatVersion  = int64(2)
	tagRecord      = uint8(0x01)
	tagTrailer     = uint8(0x00)
	defaultBufSize = 52 * 1024
)

// Options configures the behavior of an SSTable.
type Options struct {
	// BufferSize is the size of the read/write buffer.
	BufferSize int
}

// TableWriter represents the writing component of an SSTable.
type TableWriter struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	bw     recordio.BinaryWriter
	closed bool
	count  int64
	last   record.Record
}

// TableReader represents the reading component of an SSTable.
type TableReader struct {
	br     recordio.BinaryReader
	closed bool
	done   bool
	count  int64
	last   record.Record
}

// OpenWriter initializes a new TableWriter on w and writes the table header.
// The writer never closes w.
func OpenWriter(w io.Writer, opts *Options) (*TableWriter, error) {
	if w == nil {
		return nil, errors.New("sstable: Writer cannot be nil")
	}

	opts = withDefaults(opts)

	buf := bufio.NewWriterSize(w, opts.BufferSize)
	writer := &TableWriter{
		buf: buf,
		bw:  recordio.NewBinaryWriter(buf),
	}

	if err := writer.writeHeader(); err != nil {
		return nil, fmt.Errorf("sstable: failed to write header: %w", err)
	}

	return writer, nil
}

// OpenReader initializes a new TableReader on r and validates the header.
func OpenReader(r io.Reader, opts *Options) (*TableReader, error) {
	if r == nil {
		return nil, errors.New("sstable: Reader cannot be nil")
	}

	opts = withDefaults(opts)

	reader := &TableReader{
		br: recordio.NewBinaryReader(bufio.NewReaderSize(r, opts.BufferSize)),
	}

	if err := reader.checkHeader(); err != nil {
		return nil, err
	}

	return reader, nil
}

func withDefaults(opts *Options) *Options {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufSize
	}
	return &o
}

// Write appends rec. Records must arrive in non-decreasing order.
func (w *TableWriter) Write(rec record.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTableClosed
	}

	if w.count > 0 && rec.Less(w.last) {
		return ErrWriteError
	}

	if _, err := w.bw.WriteTag(tagRecord); err != nil {
		return err
	}
	if _, err := w.bw.WriteInt64(int64(rec)); err != nil {
		return fmt.Errorf("error writing record: %w", err)
	}

	w.count++
	w.last = rec

	return nil
}

// Count returns the number of records written so far.
func (w *TableWriter) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Flush writes buffered records to the underlying writer.
func (w *TableWriter) Flush() error {
	return w.buf.Flush()
}

// Close writes the trailer and flushes. Closing twice is a no-op.
func (w *TableWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	return w.writeTrailer()
}

// writeHeader writes the SSTable header.
func (w *TableWriter) writeHeader() error {
	if _, err := w.bw.WriteInt64(magicHeader); err != nil {
		return err
	}
	if _, err := w.bw.WriteInt64(formatVersion); err != nil {
		return err
	}
	return nil
}

// writeTrailer writes the record count and footer magic.
func (w *TableWriter) writeTrailer() error {
	if _, err := w.bw.WriteTag(tagTrailer); err != nil {
		return err
	}
	if _, err := w.bw.WriteInt64(w.count); err != nil {
		return err
	}
	if _, err := w.bw.WriteInt64(magicFooter); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (r *TableReader) checkHeader() error {
	header, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("sstable: invalid header: %w", unexpected(err))
	}
	if header != magicHeader {
		return ErrCorruptedTable
	}

	version, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("sstable: invalid version: %w", unexpected(err))
	}
	if version != formatVersion {
		return fmt.Errorf("sstable: unsupported version %d", version)
	}

	return nil
}

// Read returns the next record, or io.EOF after a valid trailer.
func (r *TableReader) Read() (record.Record, error) {
	if r.closed {
		return 0, ErrTableClosed
	}
	if r.done {
		return 0, io.EOF
	}

	tag, err := r.br.ReadTag()
	if err != nil {
		return 0, fmt.Errorf("%w: missing trailer: %w", ErrCorruptedTable, unexpected(err))
	}

	switch tag {
	case tagRecord:
		v, err := r.br.ReadInt64()
		if err != nil {
			return 0, fmt.Errorf("%w: truncated record: %w", ErrCorruptedTable, unexpected(err))
		}
		rec := record.Record(v)
		if r.count > 0 && rec.Less(r.last) {
			return 0, fmt.Errorf("%w: record %d out of order", ErrCorruptedTable, r.count)
		}
		r.count++
		r.last = rec
		return rec, nil
	case tagTrailer:
		if err := r.checkTrailer(); err != nil {
			return 0, err
		}
		r.done = true
		return 0, io.EOF
	default:
		return 0, fmt.Errorf("%w: unknown tag %#x", ErrCorruptedTable, tag)
	}
}

func (r *TableReader) checkTrailer() error {
	count, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("%w: invalid trailer: %w", ErrCorruptedTable, unexpected(err))
	}
	if count != r.count {
		return fmt.Errorf("%w: trailer counts %d records, read %d", ErrCorruptedTable, count, r.count)
	}

	footer, err := r.br.ReadInt64()
	if err != nil {
		return fmt.Errorf("%w: invalid footer: %w", ErrCorruptedTable, unexpected(err))
	}
	if footer != magicFooter {
		return ErrCorruptedTable
	}
	return nil
}

// unexpected turns io.EOF into io.ErrUnexpectedEOF. Only the trailer ends a
// table, so running out of bytes anywhere else is never a clean end.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Count returns the number of records read so far.
func (r *TableReader) Count() int64 {
	return r.count
}

// Close closes the reader component.
func (r *TableReader) Close() error {
	r.closed = true
	return nil
}
