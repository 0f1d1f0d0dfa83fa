package dedup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/recordio"
)

// checkInterval is how many records are scanned between context checks.
const checkInterval = 4096

// ErrNotSorted is returned when the scanned stream decreases.
var ErrNotSorted = errors.New("dedup: stream is not sorted")

// Result summarises a scan.
type Result struct {
	// Records is the number of records read.
	Records int64
	// Duplicates is the number of distinct values reported.
	Duplicates int64
}

// Scan reads a sorted stream once and reports every value that occurs more
// than once, exactly once, in ascending order.
func Scan(ctx context.Context, r recordio.Reader, report Reporter) (Result, error) {
	var (
		res      Result
		prev     record.Record
		reported bool
		last     record.Record
	)
	for {
		cur, err := r.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}

		res.Records++
		if res.Records%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		if res.Records == 1 {
			prev = cur
			continue
		}

		switch c := record.Compare(cur, prev); {
		case c < 0:
			return res, fmt.Errorf("%w: %s after %s at record %d", ErrNotSorted, cur, prev, res.Records)
		case c == 0 && (!reported || last != prev):
			if err := report.Report(ctx, prev); err != nil {
				return res, err
			}
			res.Duplicates++
			reported = true
			last = prev
		}
		prev = cur
	}
}
