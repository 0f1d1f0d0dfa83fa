// Package chunk splits a stream of decimal lines into sorted runs.
//
// The Sorter reads the input once, parses each non-blank line into a
// record.Record and buffers it in an ordered btree until the flush Strategy
// asks for the chunk to be written out. Each flushed chunk becomes one run in
// ascending order. Equal values are all kept.
//
// The default strategy is a ByteBudget derived from the input size:
//
//	threshold, err := chunk.Threshold(totalBytes, chunk.DefaultBudget())
//
// Threshold spreads the input over Budget.MaxRuns runs but never goes below
// Budget.MinBudget. When the per-run share would meet the memory ceiling it
// returns a *CapacityError instead, which callers detect with
// errors.Is(err, chunk.ErrCapacity).
//
// Basic usage:
//
//	sorter := chunk.New(store, chunk.Options{})
//	handles, err := sorter.Split(ctx, file, size)
//
// A malformed line aborts the split with a *record.ParseError and every run
// already written is deleted.
package chunk
