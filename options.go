package dupnum

import (
	"io"
	"log/slog"

	"github.com/davidvella/dupnum/chunk"
	"github.com/davidvella/dupnum/merge"
	"github.com/davidvella/dupnum/monitoring"
	"github.com/davidvella/dupnum/run"
)

// options defines all configuration options for the finder.
type options struct {
	// Sorting options
	budget   chunk.Budget   // Chunk sizing derived from the input size
	strategy chunk.Strategy // Overrides the budget derived flush policy

	// Storage options
	tempDir string      // Where the per-invocation directory is created
	storage run.Storage // Used instead of a fresh directory when set
	run     run.Options // Run encoding

	// Merge options
	merge merge.Strategy

	// Output options
	output   io.Writer // Receives "Duplicate number found" lines
	quiet    bool      // Suppresses output
	handlers []Handler // Extra receivers of each duplicate

	logger *slog.Logger
	stats  monitoring.Stats
}

// Option is a function that configures the finder options.
type Option func(*options)

// WithMemoryBudget sets the smallest number of input bytes held in memory
// per chunk.
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) {
		o.budget.MinBudget = bytes
	}
}

// WithMaxRuns sets the number of runs the input is spread over.
func WithMaxRuns(n int) Option {
	return func(o *options) {
		o.budget.MaxRuns = n
	}
}

// WithMemoryCeiling sets the per-run share at which the search is refused.
// Zero disables the check.
func WithMemoryCeiling(bytes int64) Option {
	return func(o *options) {
		o.budget.MemoryCeiling = bytes
	}
}

// WithFlushStrategy replaces the budget derived flush policy.
func WithFlushStrategy(strategy chunk.Strategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

// WithTempDir sets the directory under which intermediate files are kept.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithStorage keeps intermediate runs in storage. The finder does not close it.
func WithStorage(storage run.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithRunFormat sets the encoding of intermediate runs.
func WithRunFormat(format run.Format) Option {
	return func(o *options) {
		o.run.Format = format
	}
}

// WithCompression sets the compression of intermediate runs.
func WithCompression(compression run.Compression) Option {
	return func(o *options) {
		o.run.Compression = compression
	}
}

// WithMergeStrategy sets how runs are merged.
func WithMergeStrategy(strategy merge.Strategy) Option {
	return func(o *options) {
		o.merge = strategy
	}
}

// WithOutput sets where duplicates are printed. Nothing is printed unless
// the search succeeds.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithQuiet suppresses printing of duplicates.
func WithQuiet(quiet bool) Option {
	return func(o *options) {
		o.quiet = quiet
	}
}

// WithHandler adds a receiver for each duplicate. Handlers are called while
// the merged stream is scanned, before the search is known to succeed.
func WithHandler(h Handler) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, h)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStats sets the statistics recorder.
func WithStats(stats monitoring.Stats) Option {
	return func(o *options) {
		o.stats = stats
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		budget: chunk.DefaultBudget(),
		run:    run.DefaultOptions(),
		merge:  merge.StrategyHeap,
		logger: slog.Default(),
		stats:  monitoring.Nop{},
	}
}
