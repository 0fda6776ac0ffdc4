package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kopong25/freightquick/app"
	"github.com/kopong25/freightquick/config"
)

var matchCmd = &cobra.Command{
	Use:   "match <load-id>",
	Short: "Rank eligible drivers for a load",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	matches, err := svc.Facade.FindMatches(ctx, args[0])
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no eligible drivers")
		return nil
	}
	for i, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-12s %-16s score=%6.1f deadhead=%.0fmi\n",
			i+1, m.DriverID, m.Category, m.Score, m.Breakdown.DeadheadMiles)
	}
	return nil
}
