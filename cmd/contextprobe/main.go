package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/context-probe/internal/app"
	"github.com/samvad-hq/context-probe/internal/cli"
)

func main() {
	if err := run(); err != nil {
		// Probe failures were already described on stderr.
		var failure *app.ProbeFailure
		if !errors.As(err, &failure) {
			fmt.Fprintf(os.Stderr, "contextprobe: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCommand().ExecuteContext(ctx)
}
