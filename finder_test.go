package dupnum_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/chunk"
	"github.com/davidvella/dupnum/merge"
	"github.com/davidvella/dupnum/monitoring"
	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/run"
	"github.com/davidvella/dupnum/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(values ...string) string {
	return strings.Join(values, "\n") + "\n"
}

var scenarioA = []string{
	"325", "144", "8", "9999", "438", "9", "96", "109", "877", "5342", "2", "16",
	"8", "11441", "181", "199991", "14381", "191", "1961", "11091", "18771", "153421", "121", "1161",
	"23252", "21442", "282", "299992", "9", "292", "2962", "21092", "28772", "144", "222", "2162",
	"33253", "31443", "325", "399993", "34383", "393", "3963", "31093", "38773", "353423", "323", "3163",
	"43254", "438", "484", "499994", "44384", "494", "4964", "9999", "48774", "453424", "424", "4164",
	"53255", "51445", "585", "599995", "54385", "595", "5965", "51095", "58775", "553425", "525", "5165",
	"144", "61446", "686", "699996", "64386", "696", "6966", "61096", "68776", "9999", "626", "6166",
	"73257", "71447", "787", "799997", "325", "797", "7967", "71097", "78777", "753427", "727", "7167",
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []record.Record
	}{
		{name: "unsorted without duplicates", input: lines("3", "1", "2"), want: []record.Record{}},
		{name: "groups", input: lines("5", "5", "2", "2", "2", "9"), want: []record.Record{2, 5}},
		{name: "empty", input: "", want: []record.Record{}},
		{name: "single", input: "42", want: []record.Record{}},
		{name: "numeric order", input: lines("10", "9", "10", "9", "100"), want: []record.Record{9, 10}},
		{name: "negative", input: lines("-1", "7", "-1"), want: []record.Record{-1}},
		{name: "scenario a", input: lines(scenarioA...), want: []record.Record{8, 9, 144, 325, 438, 9999}},
	}

	for _, tt := range tests {
		for _, flush := range []int64{1, 2, 5, 1000} {
			t.Run(fmt.Sprintf("%s/flush %d", tt.name, flush), func(t *testing.T) {
				store := memory.NewMemoryStorage()
				f, err := dupnum.New(
					dupnum.WithStorage(store),
					dupnum.WithFlushStrategy(chunk.RecordCount(flush)),
				)
				require.NoError(t, err)

				got, err := f.Find(context.Background(), strings.NewReader(tt.input), int64(len(tt.input)))
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)

				names, err := store.List(context.Background())
				require.NoError(t, err)
				assert.Empty(t, names)
			})
		}
	}
}

func TestFindSplitInvariance(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	var (
		b      strings.Builder
		counts = make(map[record.Record]int)
	)
	for range 5000 {
		v := record.Record(r.Int64N(3000) - 1000)
		counts[v]++
		fmt.Fprintln(&b, v)
	}
	var want []record.Record
	for v, n := range counts {
		if n > 1 {
			want = append(want, v)
		}
	}
	slices.Sort(want)
	input := b.String()

	formats := []run.Options{
		{Format: run.FormatText},
		{Format: run.FormatSSTable, Compression: run.CompressionS2},
		{Format: run.FormatCBOR, Compression: run.CompressionZstd},
	}
	for _, format := range formats {
		for _, strategy := range []merge.Strategy{merge.StrategyHeap, merge.StrategyLoser} {
			for _, flush := range []chunk.Strategy{chunk.ByteBudget(64), chunk.RecordCount(999), chunk.ByteBudget(1 << 30)} {
				name := fmt.Sprintf("%s%s/%s/%v", format.Format, format.Ext(), strategy, flush)
				t.Run(name, func(t *testing.T) {
					f, err := dupnum.New(
						dupnum.WithStorage(memory.NewMemoryStorage()),
						dupnum.WithRunFormat(format.Format),
						dupnum.WithCompression(format.Compression),
						dupnum.WithMergeStrategy(strategy),
						dupnum.WithFlushStrategy(flush),
					)
					require.NoError(t, err)

					got, err := f.Find(context.Background(), strings.NewReader(input), int64(len(input)))
					require.NoError(t, err)
					assert.Equal(t, want, got)
				})
			}
		}
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "numbers.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines("5", "5", "2", "2", "2", "9")), 0o600))

	tmp := t.TempDir()
	var out bytes.Buffer
	got, err := dupnum.FindFile(context.Background(), path,
		dupnum.WithTempDir(tmp),
		dupnum.WithOutput(&out),
		dupnum.WithMemoryBudget(4),
		dupnum.WithMemoryCeiling(0),
	)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{2, 5}, got)
	assert.Equal(t, "Duplicate number found: 2\nDuplicate number found: 5\n", out.String())

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFindQuiet(t *testing.T) {
	var out bytes.Buffer
	got, err := dupnum.FindFile(context.Background(), writeInput(t, lines("1", "1")),
		dupnum.WithTempDir(t.TempDir()),
		dupnum.WithOutput(&out),
		dupnum.WithQuiet(true),
	)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{1}, got)
	assert.Empty(t, out.String())
}

func writeInput(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestFindErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		opts     []dupnum.Option
		wantKind dupnum.ErrorKind
		wantCode int
	}{
		{
			name:     "parse",
			path:     func(t *testing.T) string { return writeInput(t, lines("1", "2", "12a")) },
			wantKind: dupnum.KindParse,
			wantCode: 4,
		},
		{
			name:     "parse after runs written",
			path:     func(t *testing.T) string { return writeInput(t, lines("1", "2", "3", "x")) },
			opts:     []dupnum.Option{dupnum.WithFlushStrategy(chunk.RecordCount(1))},
			wantKind: dupnum.KindParse,
			wantCode: 4,
		},
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.txt") },
			wantKind: dupnum.KindIO,
			wantCode: 3,
		},
		{
			name: "capacity",
			path: func(t *testing.T) string { return writeInput(t, strings.Repeat("1234567\n", 4)) },
			opts: []dupnum.Option{
				dupnum.WithMaxRuns(2),
				dupnum.WithMemoryBudget(4),
				dupnum.WithMemoryCeiling(16),
			},
			wantKind: dupnum.KindCapacity,
			wantCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			registry := monitoring.NewRegistry()
			opts := append([]dupnum.Option{
				dupnum.WithTempDir(tmp),
				dupnum.WithStats(monitoring.NewStats(registry)),
			}, tt.opts...)

			got, err := dupnum.FindFile(context.Background(), tt.path(t), opts...)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantKind, dupnum.Kind(err))
			assert.Equal(t, tt.wantCode, dupnum.ExitCode(err))
			assert.InDelta(t, 1, registry.Total(monitoring.MetricErrors), 0)

			entries, err := os.ReadDir(tmp)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestNewInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  dupnum.Option
	}{
		{name: "max runs", opt: dupnum.WithMaxRuns(0)},
		{name: "budget", opt: dupnum.WithMemoryBudget(-1)},
		{name: "format", opt: dupnum.WithRunFormat("parquet")},
		{name: "compression", opt: dupnum.WithCompression("lz4")},
		{name: "merge", opt: dupnum.WithMergeStrategy("bubble")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dupnum.New(tt.opt)
			require.ErrorIs(t, err, dupnum.ErrUsage)
			assert.Equal(t, 2, dupnum.ExitCode(err))
		})
	}
}

func TestFindStatsAndHandler(t *testing.T) {
	registry := monitoring.NewRegistry()
	var seen []record.Record
	f, err := dupnum.New(
		dupnum.WithStorage(memory.NewMemoryStorage()),
		dupnum.WithFlushStrategy(chunk.RecordCount(2)),
		dupnum.WithStats(monitoring.NewStats(registry)),
		dupnum.WithHandler(dupnum.HandlerFunc(func(_ context.Context, v record.Record) error {
			seen = append(seen, v)
			return nil
		})),
	)
	require.NoError(t, err)

	input := lines("4", "4", "3", "1", "3")
	got, err := f.Find(context.Background(), strings.NewReader(input), -1)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{3, 4}, got)
	assert.Equal(t, got, seen)

	assert.InDelta(t, 3, registry.Total(monitoring.MetricRunsWritten), 0)
	assert.InDelta(t, 5, registry.Total(monitoring.MetricRecordsSplit), 0)
	assert.InDelta(t, 5, registry.Total(monitoring.MetricRecordsMerged), 0)
	assert.InDelta(t, 2, registry.Total(monitoring.MetricDuplicates), 0)
	assert.Zero(t, registry.Total(monitoring.MetricErrors))
}

func TestFindCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.NewMemoryStorage()
	f, err := dupnum.New(dupnum.WithStorage(store))
	require.NoError(t, err)

	_, err = f.Find(ctx, strings.NewReader(lines("1", "1")), -1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, dupnum.ExitCode(err))
}

func TestFindReadError(t *testing.T) {
	store := memory.NewMemoryStorage()
	f, err := dupnum.New(
		dupnum.WithStorage(store),
		dupnum.WithFlushStrategy(chunk.RecordCount(1)),
	)
	require.NoError(t, err)

	input := io.MultiReader(
		strings.NewReader(lines("4", "4", "2")),
		iotest.ErrReader(errors.New("connection reset")),
	)
	got, err := f.Find(context.Background(), input, -1)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, chunk.ErrRead)
	assert.Equal(t, dupnum.KindIO, dupnum.Kind(err))
	assert.Equal(t, 3, dupnum.ExitCode(err))

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFindFailedScanPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("handler failed")
	f, err := dupnum.New(
		dupnum.WithStorage(memory.NewMemoryStorage()),
		dupnum.WithOutput(&out),
		dupnum.WithHandler(dupnum.HandlerFunc(func(_ context.Context, v record.Record) error {
			if v == 2 {
				return boom
			}
			return nil
		})),
	)
	require.NoError(t, err)

	got, err := f.Find(context.Background(), strings.NewReader(lines("2", "1", "1", "2")), -1)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.Empty(t, out.String())
}
