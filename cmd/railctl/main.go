package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "railfactory/internal/cli"
	"railfactory/internal/config"
)

func main() {
	cfg := config.LoadCTLFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "railctl",
		Short:        "Inspect a rail factory guild over the read API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "base URL of the railfactory API")

	root.AddCommand(
		newTopCmd(&apiBase),
		newRankCmd(&apiBase),
		newSharesCmd(&apiBase),
		newTotalsCmd(&apiBase),
		newPurchasesCmd(&apiBase),
		newRefreshCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newTopCmd(apiBase *string) *cobra.Command {
	var tier, limit int
	cmd := &cobra.Command{
		Use:   "top <guild-id>",
		Short: "Show the tier contribution leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Leaderboard(ctx, args[0], tier, limit)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 1, "tier to rank by")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}

func newRankCmd(apiBase *string) *cobra.Command {
	var tier int
	cmd := &cobra.Command{
		Use:   "rank <guild-id> <user-id>",
		Short: "Show one user's contribution rank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).UserRank(ctx, args[0], args[1], tier)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 1, "tier to rank by")
	return cmd
}

func newSharesCmd(apiBase *string) *cobra.Command {
	var resource string
	var limit int
	cmd := &cobra.Command{
		Use:   "shares <guild-id>",
		Short: "Show per-user production shares of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resource == "" {
				return fmt.Errorf("--resource is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Shares(ctx, args[0], resource, limit)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&resource, "resource", "", "resource name, e.g. steel")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}

func newTotalsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <guild-id>",
		Short: "Show guild-wide production totals per resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Totals(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func newPurchasesCmd(apiBase *string) *cobra.Command {
	var role, resource, from, to string
	var limit int
	cmd := &cobra.Command{
		Use:   "purchases <guild-id>",
		Short: "Query the purchase ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fromT, toT time.Time
			var err error
			if from != "" {
				if fromT, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("--from must be RFC3339: %w", err)
				}
			}
			if to != "" {
				if toT, err = time.Parse(time.RFC3339, to); err != nil {
					return fmt.Errorf("--to must be RFC3339: %w", err)
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Purchases(ctx, args[0], role, resource, fromT, toT, limit)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "filter by purchaser role")
	cmd.Flags().StringVar(&resource, "resource", "", "filter by spent resource")
	cmd.Flags().StringVar(&from, "from", "", "inclusive lower time bound (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "exclusive upper time bound (RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 100, "max rows")
	return cmd
}

func newRefreshCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <guild-id>",
		Short: "Apply pending passive accrual for every member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Refresh(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
