package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/cycle"
	"github.com/hollowoak/farmhand/internal/location"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/rollup"
	"github.com/hollowoak/farmhand/internal/task"
)

func newSummaryCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a farm snapshot",
		Long:  "Prints entity counts, open work, and the current cycle's progress.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), conn, time.Now())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "farmhand.yaml", "path to Farmhand config file")
	return cmd
}

func printSummary(out io.Writer, conn *gorm.DB, now time.Time) error {
	type counted struct {
		label string
		model interface{}
	}
	for _, c := range []counted{
		{"Assets", &models.Asset{}},
		{"Locations", &models.Location{}},
		{"Logs", &models.FarmLog{}},
		{"Tasks", &models.Task{}},
		{"Plans", &models.Plan{}},
		{"Cycles", &models.Cycle{}},
	} {
		var n int64
		if err := conn.Model(c.model).Count(&n).Error; err != nil {
			return fmt.Errorf("summary: count %s: %w", c.label, err)
		}
		fmt.Fprintf(out, "%-10s %d\n", c.label, n)
	}

	fmt.Fprintln(out, "\nAssets by type:")
	for _, assetType := range models.AssetTypes {
		var n int64
		if err := conn.Model(&models.Asset{}).Where("asset_type = ?", assetType).Count(&n).Error; err != nil {
			return fmt.Errorf("summary: count %s assets: %w", assetType, err)
		}
		if n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", assetType, n)
		}
	}

	roots, err := location.List(conn, location.ListFilters{Roots: true})
	if err != nil {
		return err
	}
	if len(roots) > 0 {
		fmt.Fprintln(out, "\nLocations:")
		for _, loc := range roots {
			total, err := rollup.TotalAssetCount(conn, loc.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s: %d assets\n", loc.Name, total)
		}
	}

	overdue, err := task.List(conn, task.ListFilters{Overdue: true, Now: now})
	if err != nil {
		return err
	}
	blocked, err := task.List(conn, task.ListFilters{Blocked: true})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nOverdue: %d  Blocked: %d\n", len(overdue), len(blocked))

	current, err := cycle.FindCurrent(conn, now)
	if apperr.IsNotFound(err) {
		fmt.Fprintln(out, "No cycle underway")
		return nil
	}
	if err != nil {
		return err
	}
	tally, err := rollup.CycleTally(conn, current.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Cycle %q: day %d of %d, %d/%d tasks done (%d%%)\n",
		current.Name,
		rollup.CycleDaysElapsed(*current, now),
		rollup.CycleTotalDays(*current),
		tally.Completed, tally.Total, tally.Progress())
	return nil
}
