package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/config"
	"github.com/davidvella/dupnum/generate"
	"github.com/davidvella/dupnum/monitoring"
)

const (
	defaultInput = "numbers.txt"
	defaultCount = 100000
)

type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "dupnum [file]",
		Short: "Report duplicate numbers in a file too large to sort in memory",
		Long: `Reads a file of newline separated integers, sorts it externally in
bounded memory and prints every value that occurs more than once.

Without a file, ` + defaultInput + ` is generated with random numbers first.`,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runFind,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	})

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./dupnum.yaml)")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(a.findCommand())
	root.AddCommand(a.generateCommand())
	root.AddCommand(a.selftestCommand())
	return root
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
		}
		return nil
	}
}

func (a *app) findCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find [file]",
		Short: "Report duplicate numbers in a file",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE:  a.runFind,
	}
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	}
	logger, err := cfg.Logger(a.stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (a *app) runFind(cmd *cobra.Command, args []string) error {
	cfg, logger, err := a.setup(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	registry := monitoring.NewRegistry()
	opts = append(opts,
		dupnum.WithOutput(a.stdout),
		dupnum.WithLogger(logger),
		dupnum.WithStats(monitoring.NewStats(registry)),
	)

	path := defaultInput
	if len(args) > 0 {
		path = args[0]
	} else {
		err := generate.File(path, func(w io.Writer) error {
			return generate.Random(w, defaultCount, nil)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", dupnum.ErrIO, err)
		}
		logger.Info("generated input", slog.String("file", path), slog.Int("count", defaultCount))
	}

	start := time.Now()
	duplicates, err := dupnum.FindFile(cmd.Context(), path, opts...)
	if err != nil {
		return err
	}
	logger.Info("search complete",
		slog.String("file", path),
		slog.Int("duplicates", len(duplicates)),
		slog.Duration("elapsed", time.Since(start)))

	if cfg.Output.Stats {
		if err := monitoring.WriteSummary(a.stderr, registry); err != nil {
			return fmt.Errorf("%w: %w", dupnum.ErrIO, err)
		}
	}
	return nil
}
