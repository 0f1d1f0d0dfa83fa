package dedup

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/davidvella/dupnum/record"
)

// Reporter receives each duplicated value once, in ascending order.
type Reporter interface {
	Report(ctx context.Context, value record.Record) error
}

// ReporterFunc is a function type that implements Reporter.
type ReporterFunc func(ctx context.Context, value record.Record) error

// Report calls the function.
func (f ReporterFunc) Report(ctx context.Context, value record.Record) error {
	return f(ctx, value)
}

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(context.Context, record.Record) error { return nil })

// Printer writes one "Duplicate number found: <value>" line per report.
type Printer struct {
	w   io.Writer
	buf []byte
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

const printPrefix = "Duplicate number found: "

func (p *Printer) Report(_ context.Context, value record.Record) error {
	p.buf = append(p.buf[:0], printPrefix...)
	p.buf, _ = value.AppendText(p.buf)
	p.buf = append(p.buf, '\n')
	if _, err := p.w.Write(p.buf); err != nil {
		return fmt.Errorf("dedup: failed to print duplicate: %w", err)
	}
	return nil
}

// Collector keeps every reported value.
type Collector struct {
	Values []record.Record
}

func (c *Collector) Report(_ context.Context, value record.Record) error {
	c.Values = append(c.Values, value)
	return nil
}

// Logger logs each report at debug level.
type Logger struct {
	Logger *slog.Logger
}

func (l Logger) Report(ctx context.Context, value record.Record) error {
	l.Logger.DebugContext(ctx, "duplicate found", slog.Int64("value", int64(value)))
	return nil
}

// Multi fans a report out to every reporter. All reporters are called even
// when one fails.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, value record.Record) error {
	var errs *multierror.Error
	for _, r := range m {
		if err := r.Report(ctx, value); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
