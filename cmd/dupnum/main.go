package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/davidvella/dupnum"
)

func setMemoryLimit() {
	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.8),
		memlimit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set memory limit using package github.com/KimMachineGun/automemlimit/memlimit: %v\n", err)
	}
}

func main() {
	setMemoryLimit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(os.Stderr, err)
	}
	os.Exit(dupnum.ExitCode(err))
}

func printError(w io.Writer, err error) {
	switch dupnum.Kind(err) {
	case dupnum.KindCapacity:
		fmt.Fprintln(w, "Potential memory error may occur with amount of data being processed. Unable to proceed.")
		fmt.Fprintf(w, "dupnum: %v\n", err)
	case dupnum.KindIO:
		fmt.Fprintf(w, "File location or access error occurred: %v\n", err)
	default:
		fmt.Fprintf(w, "dupnum: %v\n", err)
	}
}
