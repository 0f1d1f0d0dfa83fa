// Package monitoring provides logging setup and in-process statistics.
//
// NewLogger builds a log/slog logger in text or JSON format. Packages tag
// their loggers with Component so each line names its source:
//
//	logger, err := monitoring.NewLogger(os.Stderr, "debug", monitoring.FormatJSON)
//	logger = monitoring.Component(logger, "merge")
//
// Statistics are kept in a Registry of counters, gauges and histograms.
// NewStats registers the metrics of a duplicate search and returns a Stats
// recorder; WriteSummary prints them in human readable form.
package monitoring
