// Package dedup finds duplicated values in a sorted stream of records.
//
// Scan reads the stream once, comparing each record with its predecessor.
// When two neighbours are equal the value is reported, but only the first
// time, so a group of any length yields one report. Because the stream is
// sorted, reports arrive in strictly ascending order. A record smaller than
// its predecessor fails the scan with ErrNotSorted.
//
// Reports go to a Reporter:
//
//	dedup.NewPrinter(os.Stdout)   // "Duplicate number found: 42"
//	&dedup.Collector{}            // keeps the values
//	dedup.Multi{printer, collector}
//
// Basic usage:
//
//	res, err := dedup.Scan(ctx, reader, dedup.NewPrinter(os.Stdout))
package dedup
