package dupnum

import (
	"context"

	"github.com/davidvella/dupnum/dedup"
	"github.com/davidvella/dupnum/record"
)

// Handler receives each duplicated value once, in ascending order.
type Handler = dedup.Reporter

// HandlerFunc is a function type that implements Handler.
type HandlerFunc func(ctx context.Context, value record.Record) error

// Report calls the function.
func (f HandlerFunc) Report(ctx context.Context, value record.Record) error {
	return f(ctx, value)
}
