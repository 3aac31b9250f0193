package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"url-vetting/config"
)

var allowCmd = &cobra.Command{
	Use:   "allow <url-or-domain>",
	Short: "Add a domain to the user allow list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.analyzer.AddToAllowList(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "allowed %s\n", args[0])
			return nil
		})
	},
}

var denyCmd = &cobra.Command{
	Use:   "deny <url-or-domain>",
	Short: "Move a domain to the user deny list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.analyzer.MarkUnsafe(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "denied %s\n", args[0])
			return nil
		})
	},
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show the user allow and deny lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			l, err := a.analyzer.UserLists(ctx)
			if err != nil {
				return err
			}
			printLists(cmd.OutOrStdout(), l)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if a.db == nil {
				return fmt.Errorf("DATABASE_URL not set")
			}
			return a.db.Migrate(ctx)
		})
	},
}

func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
