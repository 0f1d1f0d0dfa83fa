package recordio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/davidvella/dupnum/record"
)

var (
	Int64Size = int64(binary.Size(int64(0)))
	TagSize   = int64(binary.Size(uint8(0)))
)

// BinaryWriter handles writing binary data with error handling.
type BinaryWriter struct {
	w io.Writer
}

func NewBinaryWriter(w io.Writer) BinaryWriter {
	return BinaryWriter{w: w}
}

func (bw BinaryWriter) WriteInt64(i int64) (int64, error) {
	err := binary.Write(bw.w, binary.LittleEndian, i)
	if err != nil {
		return 0, err
	}
	return Int64Size, nil
}

func (bw BinaryWriter) WriteTag(tag uint8) (int64, error) {
	if err := binary.Write(bw.w, binary.LittleEndian, tag); err != nil {
		return 0, fmt.Errorf("error writing tag: %w", err)
	}
	return TagSize, nil
}

// BinaryReader handles reading binary data with error handling.
type BinaryReader struct {
	r io.Reader
}

func NewBinaryReader(r io.Reader) BinaryReader {
	return BinaryReader{r: r}
}

func (br BinaryReader) ReadInt64() (int64, error) {
	var value int64
	err := binary.Read(br.r, binary.LittleEndian, &value)
	return value, err
}

func (br BinaryReader) ReadTag() (uint8, error) {
	var tag uint8
	err := binary.Read(br.r, binary.LittleEndian, &tag)
	return tag, err
}

// Seq creates an iterator over the records of r. Iteration stops at the
// first error; io.EOF is not reported.
func Seq(r Reader) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// ReadRecords reads all remaining records into a slice.
func ReadRecords(r Reader) ([]record.Record, error) {
	records := make([]record.Record, 0, 1)
	for rec, err := range Seq(r) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes every record of records to w.
func WriteRecords(w Writer, records ...record.Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
