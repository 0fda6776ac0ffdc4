package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kopong25/freightquick/app"
	"github.com/kopong25/freightquick/config"
	"github.com/kopong25/freightquick/core/analytics"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List drivers with their derived status",
	RunE:  runFleetLs,
}

var fleetStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the fleet analytics summary",
	RunE:  runFleetStats,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	fleetCmd.AddCommand(fleetStatsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func fleetService(ctx context.Context) (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := fleetService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	for _, v := range svc.Facade.Ledger().Drivers() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %-8s %-9s %4.1fh left  %d active\n",
			v.Driver.ID, v.Driver.Name, v.Driver.Equipment, v.Status,
			v.Driver.DutyHoursLeft, len(v.ActiveLoads))
	}
	return nil
}

func runFleetStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := fleetService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analytics.Compute(svc.Facade.Ledger()))
}
