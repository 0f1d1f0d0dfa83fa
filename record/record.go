package record

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("record: invalid integer")

	// Max is the largest representable record.
	Max Record = math.MaxInt64
	// Min is the smallest representable record.
	Min Record = math.MinInt64
)

// Record is a single number of the input list.
type Record int64

// String returns the canonical decimal form of r.
func (r Record) String() string {
	return strconv.FormatInt(int64(r), 10)
}

// AppendText appends the canonical decimal form of r to b.
func (r Record) AppendText(b []byte) ([]byte, error) {
	return strconv.AppendInt(b, int64(r), 10), nil
}

// Less reports whether r orders before t.
func (r Record) Less(t Record) bool {
	return Less(r, t)
}

// Compare orders records by numeric value. It is the single ordering used
// for sorting chunks and for ordering merge cursors.
func Compare(a, b Record) int {
	return cmp.Compare(a, b)
}

// Less reports whether a orders before b according to Compare.
func Less(a, b Record) bool {
	return Compare(a, b) < 0
}

// ParseError describes a line that is not a valid integer.
type ParseError struct {
	Line int64
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record: line %d: invalid integer %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("record: invalid integer %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Parse parses a decimal line. Surrounding whitespace, including a trailing
// carriage return, is ignored.
func Parse(line []byte) (Record, error) {
	text := bytes.TrimSpace(line)
	v, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Text: string(text), Err: err}
	}
	return Record(v), nil
}

// ParseString is Parse for strings.
func ParseString(s string) (Record, error) {
	return Parse([]byte(s))
}

// IsBlank reports whether line carries no value at all.
func IsBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}
