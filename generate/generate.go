package generate

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
)

const (
	// RandomMin and RandomMax bound the values written by Random.
	RandomMin = 1
	RandomMax = 9999999
)

// Random writes n values drawn uniformly from [RandomMin, RandomMax].
func Random(w io.Writer, n int, r *rand.Rand) error {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	tw := recordio.NewTextWriter(w)
	for range n {
		if err := tw.Write(record.Record(RandomMin + r.Int64N(RandomMax-RandomMin+1))); err != nil {
			return err
		}
	}
	return nil
}

// Sequential writes n down to 1, then each of dups. The descending order
// makes sure the input needs sorting.
func Sequential(w io.Writer, n int, dups ...record.Record) error {
	tw := recordio.NewTextWriter(w)
	for i := n; i > 0; i-- {
		if err := tw.Write(record.Record(i)); err != nil {
			return err
		}
	}
	return recordio.WriteRecords(tw, dups...)
}

// Lines writes each value on its own line exactly as given.
func Lines(w io.Writer, values ...string) error {
	for _, v := range values {
		if _, err := io.WriteString(w, v+"\n"); err != nil {
			return fmt.Errorf("error writing line: %w", err)
		}
	}
	return nil
}

// File replaces the file at path with the output of fn.
func File(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	bw := bufio.NewWriterSize(f, 64*1024)
	if err := fn(bw); err != nil {
		return fmt.Errorf("generate: %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("generate: %s: %w", path, err)
	}
	return nil
}
