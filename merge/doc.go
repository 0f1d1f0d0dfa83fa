// Package merge merges sorted runs into one globally sorted stream.
//
// Merge opens a run.Cursor per run and repeatedly emits the smallest head.
// Two orderings are available:
//
//   - StrategyHeap (default) pops the cursor with the smallest head from a
//     priority.Heap, writes the head, advances the cursor and pushes it back
//     unless it is exhausted.
//   - StrategyLoser feeds every cursor to a loser.Tree.
//
// Both produce the same sequence of values. The order of equal values coming
// from different runs is unspecified and may differ between strategies.
//
// Memory use is one cursor per run plus its read buffer, independent of the
// number of records. Each run is deleted as soon as its cursor is exhausted,
// and on any error every run still open is closed and deleted. The number of
// merged records is checked against the record counts of the runs.
//
// Basic usage:
//
//	var out recordio.SliceWriter
//	res, err := merge.Merge(ctx, store, handles, &out, merge.Options{})
//
// ToRun writes the merged stream into a new run instead.
package merge
