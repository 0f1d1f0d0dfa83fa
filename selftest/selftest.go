package selftest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/generate"
	"github.com/davidvella/dupnum/record"
)

// Duplicates is the set of values every scenario plants in its input.
var Duplicates = []record.Record{8, 9, 144, 325, 438, 9999}

// LargeCount is how many distinct values the large scenario counts down from.
const LargeCount = 200000

// Scenario is one generated input with a known duplicate report.
type Scenario struct {
	// Name is the set size used in case descriptions, e.g. "small".
	Name string
	// SizeCase and OrderCase name the two checks, e.g. "A" and "B".
	SizeCase  string
	OrderCase string
	Generate  func(w io.Writer) error
	Want      []record.Record
}

// Case is the outcome of one check.
type Case struct {
	ID          string
	Description string
	Passed      bool
}

func (c Case) String() string {
	status := "Failed"
	if c.Passed {
		status = "Passed"
	}
	return fmt.Sprintf("Test Case %s (%s): %s", c.ID, c.Description, status)
}

var smallSet = []string{
	"325", "144", "8", "9999", "438", "9", "96", "109", "877", "5342", "2", "16",
	"8", "11441", "181", "199991", "14381", "191", "1961", "11091", "18771", "153421", "121", "1161",
	"23252", "21442", "282", "299992", "9", "292", "2962", "21092", "28772", "144", "222", "2162",
	"33253", "31443", "325", "399993", "34383", "393", "3963", "31093", "38773", "353423", "323", "3163",
	"43254", "438", "484", "499994", "44384", "494", "4964", "9999", "48774", "453424", "424", "4164",
	"53255", "51445", "585", "599995", "54385", "595", "5965", "51095", "58775", "553425", "525", "5165",
	"144", "61446", "686", "699996", "64386", "696", "6966", "61096", "68776", "9999", "626", "6166",
	"73257", "71447", "787", "799997", "325", "797", "7967", "71097", "78777", "753427", "727", "7167",
}

// Scenarios returns the small hand written set and the large counted set.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:      "small",
			SizeCase:  "A",
			OrderCase: "B",
			Generate: func(w io.Writer) error {
				return generate.Lines(w, smallSet...)
			},
			Want: Duplicates,
		},
		{
			Name:      "large",
			SizeCase:  "C",
			OrderCase: "D",
			Generate: func(w io.Writer) error {
				return generate.Sequential(w, LargeCount, Duplicates...)
			},
			Want: Duplicates,
		},
	}
}

// Run writes each scenario to a file in dir, searches it and prints one line
// per check to out. It fails only when a search cannot complete.
func Run(ctx context.Context, dir string, out io.Writer, opts ...dupnum.Option) ([]Case, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	opts = append([]dupnum.Option{dupnum.WithTempDir(dir)}, opts...)
	opts = append(opts, dupnum.WithQuiet(true))

	f, err := dupnum.New(opts...)
	if err != nil {
		return nil, err
	}

	var cases []Case
	for _, s := range Scenarios() {
		got, err := runScenario(ctx, f, dir, s)
		if err != nil {
			return cases, fmt.Errorf("selftest: %s set: %w", s.Name, err)
		}

		size := Case{
			ID:          s.SizeCase,
			Description: fmt.Sprintf("Correct array size, %s number set", s.Name),
			Passed:      len(got) == len(s.Want),
		}
		order := Case{
			ID:          s.OrderCase,
			Description: fmt.Sprintf("Correct numbers present, %s number set", s.Name),
			Passed:      slices.Equal(got, s.Want),
		}
		for _, c := range []Case{size, order} {
			if _, err := fmt.Fprintln(out, c); err != nil {
				return cases, fmt.Errorf("selftest: %w", err)
			}
			cases = append(cases, c)
		}
	}
	return cases, nil
}

func runScenario(ctx context.Context, f *dupnum.Finder, dir string, s Scenario) ([]record.Record, error) {
	path := filepath.Join(dir, "numberstest.txt")
	if err := generate.File(path, s.Generate); err != nil {
		return nil, fmt.Errorf("%w: %w", dupnum.ErrIO, err)
	}
	defer os.Remove(path)
	return f.FindFile(ctx, path)
}

// Passed reports whether every case passed.
func Passed(cases []Case) bool {
	for _, c := range cases {
		if !c.Passed {
			return false
		}
	}
	return len(cases) > 0
}
