package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/context-probe/internal/app"
)

func generalCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "general",
		Short: "Fetch the general context (bearer auth)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProber(cmd, flags, func(ctx context.Context, p *app.Prober) error {
				client, err := p.BearerClient()
				if err != nil {
					return err
				}
				return p.Run(ctx, app.GeneralProbe(client))
			})
		},
	}
}

func contentStyleCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "content-style",
		Short: "Fetch the content-style context (bearer auth)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProber(cmd, flags, func(ctx context.Context, p *app.Prober) error {
				client, err := p.BearerClient()
				if err != nil {
					return err
				}
				return p.Run(ctx, app.ContentStyleProbe(client))
			})
		},
	}
}

func allCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Fetch the general and content-style contexts, stopping at the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProber(cmd, flags, func(ctx context.Context, p *app.Prober) error {
				client, err := p.BearerClient()
				if err != nil {
					return err
				}
				return p.Run(ctx, app.GeneralProbe(client), app.ContentStyleProbe(client))
			})
		},
	}
}

func userCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "user <username>",
		Short:   "Fetch the context collected for a username (api-key auth)",
		Example: "  contextprobe user elonmusk",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("username must not be empty")
			}
			return withProber(cmd, flags, func(ctx context.Context, p *app.Prober) error {
				client, err := p.APIKeyClient()
				if err != nil {
					return err
				}
				return p.Run(ctx, app.UserProbe(client, args[0]))
			})
		},
	}
}

func historyCommand(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent probe outcomes from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProber(cmd, flags, func(_ context.Context, p *app.Prober) error {
				recs, err := p.History(limit)
				if err != nil {
					return err
				}
				return p.PrintHistory(recs)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records to show (0 for all)")
	return cmd
}
