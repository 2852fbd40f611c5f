// Package cli wires the contextprobe command tree.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/context-probe/internal/app"
	"github.com/samvad-hq/context-probe/internal/config"
	"github.com/samvad-hq/context-probe/internal/logger"
)

var version = "dev"

type globalFlags struct {
	output   string
	logLevel string
}

// NewRootCommand builds the contextprobe command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "contextprobe",
		Short: "Probe the Jean context API",
		Long: `contextprobe issues authenticated GET requests against the Jean context API
and pretty-prints the JSON it returns. Credentials are read from the
environment (or a .env file): JEAN_CLIENT_ID and JEAN_ACCESS_TOKEN for the
bearer API, JEAN_API_KEY for the user-context deployment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", app.FormatJSON, "output format: json or yaml")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "write JSON logs to stderr at this level (debug, info, warn, error)")

	root.AddCommand(generalCommand(flags))
	root.AddCommand(contentStyleCommand(flags))
	root.AddCommand(allCommand(flags))
	root.AddCommand(userCommand(flags))
	root.AddCommand(historyCommand(flags))
	return root
}

// withProber loads config, initializes logging, and hands a ready Prober to fn.
func withProber(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, p *app.Prober) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl := strings.TrimSpace(flags.logLevel); lvl != "" {
		cfg.LogLevel = lvl
	}

	// Logs share stderr with failure messages, so they stay off unless a
	// level is asked for.
	var log logger.Logger = logger.NopLogger{}
	if strings.TrimSpace(cfg.LogLevel) != "" {
		if _, err := logger.InitWithWriter(cfg, cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()
		log = logger.Default()
	}
	log.DebugObj("contextprobe starting", "config", cfg.Redacted())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	prober, err := app.NewProber(ctx, cfg, log, app.Options{
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
		Format: flags.output,
	})
	if err != nil {
		log.ErrorObj("failed to initialize prober", "error", err.Error())
		return err
	}
	defer func() {
		if cerr := prober.Close(); cerr != nil {
			log.WarnObj("prober close failed", "error", cerr.Error())
		}
	}()

	return fn(ctx, prober)
}
