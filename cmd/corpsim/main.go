package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "corpsim/internal/cli"
	"corpsim/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "corpsim",
		Short:        "Corporate simulation console",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newPricesCmd(&apiBase),
		newSectorsCmd(&apiBase),
		newCorporationsCmd(&apiBase),
		newStatementCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newPricesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Show current market prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Prices(ctx)
			if err != nil {
				return err
			}
			renderPrices(out)
			return nil
		},
	}
}

func newSectorsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "Show sector production chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Sectors(ctx)
			if err != nil {
				return err
			}
			renderSectors(out)
			return nil
		},
	}
}

func newCorporationsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "corporations",
		Short: "List corporations in the active season",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Corporations(ctx)
			if err != nil {
				return err
			}
			renderCorporations(out)
			return nil
		},
	}
}

func newStatementCmd(apiBase *string) *cobra.Command {
	var periodHours float64
	var latest bool
	cmd := &cobra.Command{
		Use:   "statement <corp-id>",
		Short: "Show a corporation's financial statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid corporation id %q", args[0])
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Statement(ctx, corpID, periodHours, latest)
			if err != nil {
				return err
			}
			renderStatement(out, latest)
			return nil
		},
	}
	cmd.Flags().Float64Var(&periodHours, "period-hours", 0, "accounting window in hours (0 = server default)")
	cmd.Flags().BoolVar(&latest, "latest", false, "show the last persisted turn result instead of computing fresh")
	return cmd
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the capital leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			renderLeaderboard(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "max rows")
	return cmd
}
