// Package dupnum finds the numbers that occur more than once in a list too
// large to sort in memory.
//
// A Finder works in three phases:
//
//  1. split: the input is read once and cut into chunks bounded by a byte
//     budget. Each chunk is sorted and written to storage as a run.
//  2. merge: all runs are merged into one sorted stream with a k-way merge.
//     Each run is deleted as soon as it has been consumed.
//  3. scan: the merged stream is read once and each value seen more than
//     once is reported exactly once, in ascending order.
//
// Basic usage:
//
//	duplicates, err := dupnum.FindFile(ctx, "numbers.txt",
//	    dupnum.WithOutput(os.Stdout),
//	    dupnum.WithMemoryBudget(4<<20),
//	)
//
// The chunk budget is the input size divided by the maximum number of runs,
// but at least the memory budget. If that share meets the memory ceiling the
// search is refused with an error matching chunk.ErrCapacity. Intermediate
// files live in a directory of their own that is removed before Find
// returns, whatever the outcome.
//
// Errors can be classified with Kind and turned into process exit codes with
// ExitCode.
package dupnum
