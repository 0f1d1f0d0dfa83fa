package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/generate"
	"github.com/davidvella/dupnum/record"
	"github.com/davidvella/dupnum/selftest"
)

func (a *app) generateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a file of numbers to search",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", defaultInput, "file to write")

	var (
		count int
		seed  uint64
	)
	random := &cobra.Command{
		Use:   "random",
		Short: fmt.Sprintf("Write random numbers between %d and %d", generate.RandomMin, generate.RandomMax),
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r *rand.Rand
			if seed != 0 {
				r = rand.New(rand.NewPCG(seed, seed))
			}
			return a.writeFile(cmd, output, func(w io.Writer) error {
				return generate.Random(w, count, r)
			})
		},
	}
	random.Flags().IntVarP(&count, "count", "n", defaultCount, "how many numbers to write")
	random.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")

	var (
		n    int
		dups []int64
	)
	sequential := &cobra.Command{
		Use:   "sequential",
		Short: "Write n down to 1 followed by chosen duplicates",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := make([]record.Record, len(dups))
			for i, d := range dups {
				values[i] = record.Record(d)
			}
			return a.writeFile(cmd, output, func(w io.Writer) error {
				return generate.Sequential(w, n, values...)
			})
		},
	}
	defaultDups := make([]int64, len(selftest.Duplicates))
	for i, d := range selftest.Duplicates {
		defaultDups[i] = int64(d)
	}
	sequential.Flags().IntVarP(&n, "max", "n", selftest.LargeCount, "largest number written")
	sequential.Flags().Int64SliceVar(&dups, "dup", defaultDups, "numbers appended again at the end")

	list := &cobra.Command{
		Use:   "list value...",
		Short: "Write the given values, one per line",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeFile(cmd, output, func(w io.Writer) error {
				return generate.Lines(w, args...)
			})
		},
	}

	cmd.AddCommand(random, sequential, list)
	return cmd
}

func (a *app) writeFile(cmd *cobra.Command, path string, fn func(w io.Writer) error) error {
	_, logger, err := a.setup(cmd)
	if err != nil {
		return err
	}
	if err := generate.File(path, fn); err != nil {
		return fmt.Errorf("%w: %w", dupnum.ErrIO, err)
	}
	logger.Info("generated input", slog.String("file", path))
	return nil
}
