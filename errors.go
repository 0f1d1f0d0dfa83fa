package dupnum

import (
	"errors"
	"io"
	"io/fs"

	"github.com/davidvella/dupnum/chunk"
	"github.com/davidvella/dupnum/merge"
	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/sstable"
)

var (
	// ErrIO marks failures reading the input or using intermediate storage.
	ErrIO = errors.New("dupnum: i/o error")
	// ErrUsage marks invalid configuration.
	ErrUsage = errors.New("dupnum: invalid configuration")
)

// ErrorKind classifies an error for reporting.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnknown
	KindUsage
	KindIO
	KindParse
	KindCapacity
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUsage:
		return "usage"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Kind classifies err. Parse and capacity take precedence over I/O.
func Kind(err error) ErrorKind {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, chunk.ErrCapacity):
		return KindCapacity
	case errors.Is(err, record.ErrParse):
		return KindParse
	case errors.Is(err, ErrUsage), errors.Is(err, chunk.ErrInvalidBudget):
		return KindUsage
	case errors.Is(err, ErrIO),
		errors.Is(err, chunk.ErrRead),
		errors.Is(err, sstable.ErrCorruptedTable),
		errors.Is(err, merge.ErrRecordCountMismatch),
		errors.As(err, &pathErr),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, io.ErrUnexpectedEOF):
		return KindIO
	default:
		return KindUnknown
	}
}

// ExitCode maps err to a process exit status: 0 success, 1 unknown, 2 usage,
// 3 I/O, 4 parse, 5 capacity.
func ExitCode(err error) int {
	switch Kind(err) {
	case KindNone:
		return 0
	case KindUsage:
		return 2
	case KindIO:
		return 3
	case KindParse:
		return 4
	case KindCapacity:
		return 5
	default:
		return 1
	}
}
