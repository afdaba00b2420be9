package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type clientResolver func() (*apiClient, error)

func newStatusCommand(resolve clientResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			report, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(cmd.OutOrStdout())
			status := report.Status
			if colorize && status == "ok" {
				status = ansiGreen + status + ansiReset
			}
			fmt.Fprintf(out, "Daemon: %s\n", status)
			fmt.Fprintf(out, "Total jobs: %d\n", report.TotalJobs)
			fmt.Fprintf(out, "Active jobs: %d\n", report.ActiveJobs)
			return nil
		},
	}
}

func newMetricsCommand(resolve clientResolver) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregate translation metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			metrics, err := client.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, metrics)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total jobs: %d\n", metrics.TotalJobs)
			fmt.Fprintf(out, "Completed: %d\n", metrics.CompletedJobs)
			fmt.Fprintf(out, "Failed: %d\n", metrics.FailedJobs)
			fmt.Fprintf(out, "Active: %d\n", metrics.ActiveJobs)
			fmt.Fprintf(out, "Segments translated: %d\n", metrics.TotalSegmentsTranslated)
			fmt.Fprintf(out, "Average confidence: %s\n", formatScore(metrics.AverageConfidence))
			fmt.Fprintf(out, "Average quality: %s\n", formatScore(metrics.AverageQualityScore))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit metrics as JSON")
	return cmd
}
