// Package loser implements a tournament tree (also known as a loser tree) for
// merging many sorted sequences. It is based on the work by Bryan Boreham
// (https://github.com/bboreham/go-loser).
//
// Each internal node holds the loser of the comparison between its children
// and node 0 holds the overall winner. Advancing the winner replays only the
// games on the path from its leaf to the root, so every value costs
// O(log k) comparisons for k sequences.
//
// Unlike the original, the tree does not need a maximum value to mark
// exhausted sequences. A finished leaf carries a flag and loses every game,
// which keeps values equal to the maximum of E mergeable.
//
// Basic usage:
//
//	tree := loser.New(
//	    []loser.Sequence[int]{seq1, seq2, seq3},
//	    func(a, b int) bool { return a < b },
//	)
//
//	for v := range tree.All() {
//	    fmt.Println(v)
//	}
//
// Layout:
//   - For node N, its children are at positions 2N and 2N+1
//   - Leaf nodes are stored in positions M to 2M-1 (where M is the number of sequences)
//   - Internal nodes are stored in positions 1 to M-1
//   - Node 0 is special, containing the current winner
//
// Ties are won by the right-hand contestant, so the order in which equal
// values from different sequences are produced is not specified.
package loser
