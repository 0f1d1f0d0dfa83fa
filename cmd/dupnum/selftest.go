package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/selftest"
)

var errSelfTestFailed = errors.New("selftest: one or more cases failed")

func (a *app) selftestCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "selftest",
		Aliases: []string{"runtest"},
		Short:   "Run the built in end to end checks",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.setup(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			opts = append(opts, dupnum.WithLogger(logger))

			cases, err := selftest.Run(cmd.Context(), cfg.Run.TempDir, a.stdout, opts...)
			if err != nil {
				return err
			}
			if !selftest.Passed(cases) {
				return errSelfTestFailed
			}
			return nil
		},
	}
}
