package chunk

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	DefaultMaxRuns       = 512
	DefaultMinBudget     = 2 << 20
	DefaultMemoryCeiling = 2 << 20
)

var (
	ErrCapacity      = errors.New("chunk: memory capacity exceeded")
	ErrInvalidBudget = errors.New("chunk: invalid budget")
	ErrRead          = errors.New("chunk: failed to read input")
)

// Budget sizes chunks from the total input size.
type Budget struct {
	// MaxRuns is the number of runs the input should be spread over.
	MaxRuns int
	// MinBudget is the smallest chunk threshold in bytes.
	MinBudget int64
	// MemoryCeiling is the per-run share at which sorting is refused.
	// Zero disables the check.
	MemoryCeiling int64
}

func DefaultBudget() Budget {
	return Budget{
		MaxRuns:       DefaultMaxRuns,
		MinBudget:     DefaultMinBudget,
		MemoryCeiling: DefaultMemoryCeiling,
	}
}

func (b Budget) Validate() error {
	switch {
	case b.MaxRuns <= 0:
		return fmt.Errorf("%w: max runs must be greater than 0, got %d", ErrInvalidBudget, b.MaxRuns)
	case b.MinBudget <= 0:
		return fmt.Errorf("%w: memory budget must be greater than 0, got %d", ErrInvalidBudget, b.MinBudget)
	case b.MemoryCeiling < 0:
		return fmt.Errorf("%w: memory ceiling must not be negative, got %d", ErrInvalidBudget, b.MemoryCeiling)
	}
	return nil
}

// CapacityError reports an input too large to sort within the ceiling.
type CapacityError struct {
	TotalBytes int64
	Share      int64
	Ceiling    int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("chunk: input of %s needs %s per run, which meets the memory ceiling of %s",
		humanize.IBytes(uint64(e.TotalBytes)), humanize.IBytes(uint64(e.Share)), humanize.IBytes(uint64(e.Ceiling)))
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacity
}

// Threshold returns the chunk byte threshold for an input of totalBytes:
// max(totalBytes/MaxRuns, MinBudget). It fails with a *CapacityError when
// the per-run share meets or exceeds the memory ceiling. A negative
// totalBytes means the size is unknown and yields MinBudget.
func Threshold(totalBytes int64, b Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	share := max(totalBytes, 0) / int64(b.MaxRuns)
	if b.MemoryCeiling > 0 && share >= b.MemoryCeiling {
		return 0, &CapacityError{TotalBytes: totalBytes, Share: share, Ceiling: b.MemoryCeiling}
	}
	return max(share, b.MinBudget), nil
}
