package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hollowoak/farmhand/internal/cycle"
	"github.com/hollowoak/farmhand/internal/rollup"
)

func newCycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Manage work cycles",
	}
	cmd.AddCommand(newCycleEnsureCmd())
	cmd.AddCommand(newCycleGenerateCmd())
	return cmd
}

func newCycleEnsureCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Ensure a current cycle exists",
		Long:  "Returns the cycle covering today, creating a default-length one when none exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			current, err := cycle.EnsureCurrent(conn, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s → %s\n",
				current.Name,
				current.StartDate.Format("2006-01-02"),
				current.EndDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "farmhand.yaml", "path to Farmhand config file")
	return cmd
}

func newCycleGenerateCmd() *cobra.Command {
	var (
		configPath string
		start      string
		count      int
		duration   int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate consecutive cycles",
		Long:  "Creates a run of back-to-back cycles. One overlap with an existing cycle fails the whole batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate := time.Now()
			if start != "" {
				parsed, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("cycle generate: bad start date %q: %w", start, err)
				}
				startDate = parsed
			}
			_, conn, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cycles, err := cycle.Generate(conn, startDate, count, duration)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range cycles {
				fmt.Fprintf(out, "%s  %s → %s (%d days)\n",
					c.Name,
					c.StartDate.Format("2006-01-02"),
					c.EndDate.Format("2006-01-02"),
					rollup.CycleTotalDays(c))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "farmhand.yaml", "path to Farmhand config file")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&count, "count", 4, "number of cycles to create")
	cmd.Flags().IntVar(&duration, "duration", cycle.DefaultDurationDays, "cycle length in days")
	return cmd
}
