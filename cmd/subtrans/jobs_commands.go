package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subtrans/internal/translate"
)

func newJobsCommand(resolve clientResolver) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage translation jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(resolve))
	jobsCmd.AddCommand(newJobsShowCommand(resolve))
	jobsCmd.AddCommand(newJobsApproveCommand(resolve))
	jobsCmd.AddCommand(newJobsCancelCommand(resolve))
	jobsCmd.AddCommand(newJobsUpdateCommand(resolve))

	return jobsCmd
}

func newJobsListCommand(resolve clientResolver) *cobra.Command {
	var statusFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List translation jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			jobs, err := client.ListJobs(cmd.Context(), strings.ToLower(strings.TrimSpace(statusFilter)))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
				return nil
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.ID,
					job.FileID,
					colorStatus(string(job.Status), colorize),
					fmt.Sprintf("%d/%d", job.CompletedSegments, job.TotalSegments),
					formatScore(job.AverageConfidence),
					formatTimestamp(job.CreatedAt),
				})
			}
			out := renderTable(
				[]string{"Job", "File", "Status", "Progress", "Confidence", "Created"},
				rows,
				3, 4,
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show jobs in this status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit jobs as JSON")
	return cmd
}

func newJobsShowCommand(resolve clientResolver) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <jobID>",
		Short: "Show a job with per-segment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			printJobSummary(cmd, job)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the job as JSON")
	return cmd
}

func printJobSummary(cmd *cobra.Command, job *translate.Job) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(cmd.OutOrStdout())

	fmt.Fprintf(out, "Job: %s\n", job.ID)
	fmt.Fprintf(out, "File: %s\n", job.FileID)
	fmt.Fprintf(out, "Status: %s\n", colorStatus(string(job.Status), colorize))
	fmt.Fprintf(out, "Progress: %d/%d\n", job.CompletedSegments, job.TotalSegments)
	fmt.Fprintf(out, "Average confidence: %s\n", formatScore(job.AverageConfidence))
	fmt.Fprintf(out, "Average quality: %s\n", formatScore(job.AverageQualityScore))
	fmt.Fprintf(out, "Created: %s\n", formatTimestamp(job.CreatedAt))
	if job.CompletedAt != nil {
		fmt.Fprintf(out, "Completed: %s\n", formatTimestamp(*job.CompletedAt))
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", job.ErrorMessage)
	}

	if len(job.Segments) == 0 {
		return
	}
	rows := make([][]string, 0, len(job.Segments))
	for _, segment := range job.Segments {
		translation := "-"
		if segment.ProducedTranslation != nil {
			translation = truncate(*segment.ProducedTranslation, 48)
		}
		rows = append(rows, []string{
			segment.ID,
			truncate(segment.OriginalText, 48),
			translation,
			formatScore(segment.ConfidenceScore),
		})
	}
	table := renderTable([]string{"Segment", "Original", "Translation", "Confidence"}, rows, 3)
	fmt.Fprintln(out, table)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func newJobsApproveCommand(resolve clientResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <jobID>",
		Short: "Approve a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			job, err := client.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s approved\n", job.ID)
			return nil
		},
	}
}

func newJobsCancelCommand(resolve clientResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <jobID>",
		Short: "Cancel an in-flight job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			job, err := client.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s is now %s\n", job.ID, job.Status)
			return nil
		},
	}
}

func newJobsUpdateCommand(resolve clientResolver) *cobra.Command {
	var translation string

	cmd := &cobra.Command{
		Use:   "update <jobID> <segmentID>",
		Short: "Replace a segment's translation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(translation) == "" {
				return fmt.Errorf("--text must not be empty")
			}
			client, err := resolve()
			if err != nil {
				return err
			}
			job, err := client.UpdateSegment(cmd.Context(), args[0], args[1], translation)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Segment %s updated; job confidence %s\n",
				args[1], formatScore(job.AverageConfidence))
			return nil
		},
	}

	cmd.Flags().StringVarP(&translation, "text", "t", "", "Replacement translation text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
