package sstable_test

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"
	"testing"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
	"github.com/davidvella/dupnum/sstable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWriter initializes a new SSTable writer on a temp file and returns the writer and the file.
func setupWriter(t *testing.T) (table *sstable.TableWriter, file *os.File) {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "sstable-*.sst")
	require.NoError(t, err)
	t.Cleanup(func() { tmpFile.Close() })

	writer, err := sstable.OpenWriter(tmpFile, nil)
	require.NoError(t, err)

	return writer, tmpFile
}

// setupReader opens the table at path for reading.
func setupReader(t *testing.T, path string) *sstable.TableReader {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	reader, err := sstable.OpenReader(file, nil)
	require.NoError(t, err)
	return reader
}

func writeTable(t *testing.T, records ...record.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer, err := sstable.OpenWriter(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, recordio.WriteRecords(writer, records...))
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestHandleInvalidFile(t *testing.T) {
	tmpFile, err := os.CreateTemp(t.TempDir(), "sstable-test-*.sst")
	require.NoError(t, err)
	defer tmpFile.Close()

	_, err = tmpFile.WriteString("im a bad file with enough bytes")
	require.NoError(t, err)
	_, err = tmpFile.Seek(0, io.SeekStart)
	require.NoError(t, err)

	_, err = sstable.OpenReader(tmpFile, nil)
	assert.ErrorIs(t, err, sstable.ErrCorruptedTable)
}

func TestTableBasicOperations(t *testing.T) {
	writer, file := setupWriter(t)

	require.NoError(t, writer.Write(5))

	// Attempt to add an out-of-order record
	err := writer.Write(4)
	assert.ErrorIs(t, err, sstable.ErrWriteError)

	// Equal values are allowed
	require.NoError(t, writer.Write(5))
	assert.Equal(t, int64(2), writer.Count())

	require.NoError(t, writer.Close())

	reader := setupReader(t, file.Name())
	got, err := recordio.ReadRecords(reader)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{5, 5}, got)
	assert.Equal(t, int64(2), reader.Count())
}

func TestTableEmpty(t *testing.T) {
	data := writeTable(t)

	reader, err := sstable.OpenReader(bytes.NewReader(data), nil)
	require.NoError(t, err)

	_, err = reader.Read()
	assert.ErrorIs(t, err, io.EOF)

	// Reading past the end keeps returning EOF.
	_, err = reader.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTableMultipleRecords(t *testing.T) {
	records := []record.Record{record.Min, -9, 0, 8, 8, 9, 144, record.Max}
	data := writeTable(t, records...)

	reader, err := sstable.OpenReader(bytes.NewReader(data), &sstable.Options{BufferSize: 16})
	require.NoError(t, err)

	got, err := recordio.ReadRecords(reader)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestTableCorruption(t *testing.T) {
	data := writeTable(t, 1, 2, 3)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "truncated record",
			mutate: func(b []byte) []byte { return b[:16+9+4] },
		},
		{
			name:   "missing trailer",
			mutate: func(b []byte) []byte { return b[:16+9*3] },
		},
		{
			name: "wrong trailer count",
			mutate: func(b []byte) []byte {
				b[16+9*3+1] = 7
				return b
			},
		},
		{
			name: "wrong footer magic",
			mutate: func(b []byte) []byte {
				b[len(b)-1] = 0xff
				return b
			},
		},
		{
			name: "unknown tag",
			mutate: func(b []byte) []byte {
				b[16] = 0x7f
				return b
			},
		},
		{
			name: "out of order record",
			mutate: func(b []byte) []byte {
				// Second record's low byte: 2 -> 0.
				b[16+9+1] = 0
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupted := tt.mutate(slices.Clone(data))
			reader, err := sstable.OpenReader(bytes.NewReader(corrupted), nil)
			require.NoError(t, err)

			_, err = recordio.ReadRecords(reader)
			assert.ErrorIs(t, err, sstable.ErrCorruptedTable)
			assert.NotErrorIs(t, err, io.EOF)
		})
	}
}

func TestTableTruncatedAfterRecord(t *testing.T) {
	data := writeTable(t, 1, 2, 3)
	reader, err := sstable.OpenReader(bytes.NewReader(data[:16+9*3]), nil)
	require.NoError(t, err)

	for _, want := range []record.Record{1, 2, 3} {
		got, err := reader.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = reader.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, sstable.ErrCorruptedTable)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, io.EOF)

	got, err := recordio.ReadRecords(sstableReader(t, data[:16+9*3]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []record.Record{1, 2, 3}, got)
}

func TestTableTruncatedHeader(t *testing.T) {
	_, err := sstable.OpenReader(bytes.NewReader(nil), nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, io.EOF)
}

func sstableReader(t *testing.T, data []byte) *sstable.TableReader {
	t.Helper()
	reader, err := sstable.OpenReader(bytes.NewReader(data), nil)
	require.NoError(t, err)
	return reader
}

func TestTableUnsupportedVersion(t *testing.T) {
	data := writeTable(t, 1)
	data[8] = 9

	_, err := sstable.OpenReader(bytes.NewReader(data), nil)
	assert.EqualError(t, err, "sstable: unsupported version 9")
}

func TestTableErrors(t *testing.T) {
	writer, file := setupWriter(t)
	require.NoError(t, writer.Close())

	// Closing twice is fine
	require.NoError(t, writer.Close())

	// Attempt to write after closing
	assert.ErrorIs(t, writer.Write(1), sstable.ErrTableClosed)

	reader := setupReader(t, file.Name())
	require.NoError(t, reader.Close())
	_, err := reader.Read()
	assert.ErrorIs(t, err, sstable.ErrTableClosed)

	// Attempt to open reader and writer with nil
	_, err = sstable.OpenReader(nil, nil)
	assert.Error(t, err)

	_, err = sstable.OpenWriter(nil, &sstable.Options{BufferSize: 1024})
	assert.Error(t, err)
}

func generateSortedRecords(count int) []record.Record {
	records := make([]record.Record, count)
	for i := range records {
		records[i] = record.Record(rand.Int63n(1_000_000))
	}
	slices.Sort(records)
	return records
}

func BenchmarkTableWrite(b *testing.B) {
	for _, size := range []int{10000, 100000} {
		records := generateSortedRecords(size)

		b.Run(fmt.Sprintf("Write/%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				writer, err := sstable.OpenWriter(io.Discard, &sstable.Options{BufferSize: 1024})
				require.NoError(b, err)
				require.NoError(b, recordio.WriteRecords(writer, records...))
				require.NoError(b, writer.Close())
			}
		})
	}
}
