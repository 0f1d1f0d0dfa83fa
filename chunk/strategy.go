package chunk

// Information describes the chunk being accumulated at the moment a record of
// Next bytes is about to be added to it.
type Information struct {
	Records int64
	Bytes   int64
	Next    int64
}

// Strategy decides when the current chunk must be flushed to a run. It is
// consulted before each record is added.
type Strategy interface {
	ShouldFlush(info Information) bool
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(info Information) bool

func (f StrategyFunc) ShouldFlush(info Information) bool {
	return f(info)
}

var (
	_ Strategy = ByteBudget(0)
	_ Strategy = RecordCount(0)
	_ Strategy = Any{}
)

// ByteBudget flushes when adding the next record would push the chunk's input
// bytes past the budget. A record larger than the budget on its own still
// joins an empty chunk, so it ends up in a run by itself.
type ByteBudget int64

func (b ByteBudget) ShouldFlush(info Information) bool {
	return info.Records > 0 && info.Bytes+info.Next > int64(b)
}

// RecordCount flushes once the chunk holds n records.
type RecordCount int64

func (n RecordCount) ShouldFlush(info Information) bool {
	return info.Records > 0 && info.Records >= int64(n)
}

// Any flushes when any of its strategies does.
type Any []Strategy

func (a Any) ShouldFlush(info Information) bool {
	for _, s := range a {
		if s.ShouldFlush(info) {
			return true
		}
	}
	return false
}
