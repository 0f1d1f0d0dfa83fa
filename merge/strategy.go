package merge

import (
	"fmt"
	"strings"
)

// Strategy selects the structure that orders run cursors during a merge.
type Strategy string

const (
	// StrategyHeap keeps cursors in a binary min-heap keyed by their heads.
	StrategyHeap Strategy = "heap"
	// StrategyLoser merges run sequences through a loser tree.
	StrategyLoser Strategy = "loser"
)

// ParseStrategy parses a strategy name, case-insensitively. An empty name
// selects StrategyHeap.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyHeap, StrategyLoser:
		return st, nil
	case "":
		return StrategyHeap, nil
	default:
		return "", fmt.Errorf("merge: unknown strategy %q", s)
	}
}
