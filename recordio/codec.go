package recordio

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/davidvella/dupnum/record"
)

const defaultBufSize = 64 * 1024

// Writer appends records to an underlying stream.
type Writer interface {
	Write(rec record.Record) error
}

// Reader pulls records from an underlying stream. Read returns io.EOF once
// the stream is exhausted.
type Reader interface {
	Read() (record.Record, error)
}

// LineReader splits a stream into lines of any length. The returned slice
// excludes the newline and is only valid until the next call.
type LineReader struct {
	br      *bufio.Reader
	scratch []byte
	line    int64
}

func NewLineReader(r io.Reader) *LineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, defaultBufSize)
	}
	return &LineReader{br: br}
}

// ReadLine returns the next line. A final line without a newline is returned
// normally; io.EOF is returned only when no bytes remain.
func (lr *LineReader) ReadLine() ([]byte, error) {
	lr.scratch = lr.scratch[:0]
	for {
		chunk, err := lr.br.ReadSlice('\n')
		switch {
		case err == nil:
			lr.line++
			if len(lr.scratch) == 0 {
				return chunk[:len(chunk)-1], nil
			}
			lr.scratch = append(lr.scratch, chunk[:len(chunk)-1]...)
			return lr.scratch, nil
		case errors.Is(err, bufio.ErrBufferFull):
			lr.scratch = append(lr.scratch, chunk...)
		case errors.Is(err, io.EOF):
			lr.scratch = append(lr.scratch, chunk...)
			if len(lr.scratch) == 0 {
				return nil, io.EOF
			}
			lr.line++
			return lr.scratch, nil
		default:
			return nil, err
		}
	}
}

// Line returns the 1-based number of the last line returned.
func (lr *LineReader) Line() int64 {
	return lr.line
}

// TextReader reads newline separated decimal records. Blank lines are skipped.
type TextReader struct {
	lines *LineReader
}

func NewTextReader(r io.Reader) *TextReader {
	return &TextReader{lines: NewLineReader(r)}
}

func (tr *TextReader) Read() (record.Record, error) {
	for {
		line, err := tr.lines.ReadLine()
		if err != nil {
			return 0, err
		}
		if record.IsBlank(line) {
			continue
		}
		rec, err := record.Parse(line)
		if err != nil {
			var pe *record.ParseError
			if errors.As(err, &pe) {
				pe.Line = tr.lines.Line()
			}
			return 0, err
		}
		return rec, nil
	}
}

// TextWriter writes records in canonical decimal form, one per line.
type TextWriter struct {
	w   io.Writer
	buf []byte
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, buf: make([]byte, 0, 24)}
}

func (tw *TextWriter) Write(rec record.Record) error {
	tw.buf, _ = rec.AppendText(tw.buf[:0])
	tw.buf = append(tw.buf, '\n')
	if _, err := tw.w.Write(tw.buf); err != nil {
		return fmt.Errorf("error writing record: %w", err)
	}
	return nil
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.EncOptions{
		Sort:          cbor.SortNone,
		BigIntConvert: cbor.BigIntConvertNone,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("recordio: failed to create CBOR encoder: %v", err))
	}
	cborDec, err = cbor.DecOptions{
		IntDec: cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("recordio: failed to create CBOR decoder: %v", err))
	}
}

// CBORWriter writes each record as one CBOR integer data item.
type CBORWriter struct {
	enc *cbor.Encoder
}

func NewCBORWriter(w io.Writer) *CBORWriter {
	return &CBORWriter{enc: cborEnc.NewEncoder(w)}
}

func (cw *CBORWriter) Write(rec record.Record) error {
	if err := cw.enc.Encode(int64(rec)); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return nil
}

// CBORReader reads records written by CBORWriter.
type CBORReader struct {
	dec *cbor.Decoder
}

func NewCBORReader(r io.Reader) *CBORReader {
	return &CBORReader{dec: cborDec.NewDecoder(r)}
}

func (cr *CBORReader) Read() (record.Record, error) {
	var v int64
	if err := cr.dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("failed to decode record: %w", err)
	}
	return record.Record(v), nil
}

// SliceReader serves records from memory.
type SliceReader struct {
	records []record.Record
}

func NewSliceReader(records ...record.Record) *SliceReader {
	return &SliceReader{records: records}
}

func (sr *SliceReader) Read() (record.Record, error) {
	if len(sr.records) == 0 {
		return 0, io.EOF
	}
	rec := sr.records[0]
	sr.records = sr.records[1:]
	return rec, nil
}

// SliceWriter collects records in memory.
type SliceWriter struct {
	Records []record.Record
}

func (sw *SliceWriter) Write(rec record.Record) error {
	sw.Records = append(sw.Records, rec)
	return nil
}
