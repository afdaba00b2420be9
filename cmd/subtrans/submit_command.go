package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newSubmitCommand(resolve clientResolver) *cobra.Command {
	var fileID string
	var useExisting bool

	cmd := &cobra.Command{
		Use:   "submit <segments.json>",
		Short: "Submit a segment file for translation",
		Long: `Submit reads a JSON array of subtitle segments and starts a translation
job for them. Each entry needs segment_id and original_text; start_time,
end_time, and existing_translation are optional.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments, err := readSegmentFile(args[0])
			if err != nil {
				return err
			}
			id := strings.TrimSpace(fileID)
			if id == "" {
				id = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			client, err := resolve()
			if err != nil {
				return err
			}
			job, err := client.CreateJob(cmd.Context(), jobSubmission{
				FileID:                  id,
				UseExistingTranslations: useExisting,
				Segments:                segments,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted job %s (%d segments, status %s)\n",
				job.ID, job.TotalSegments, job.Status)
			fmt.Fprintf(out, "Track it with: subtrans jobs show %s\n", job.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileID, "file-id", "f", "", "File identifier (defaults to the segment file name)")
	cmd.Flags().BoolVar(&useExisting, "use-existing", false, "Reuse existing translations instead of calling the model")
	return cmd
}

func readSegmentFile(path string) ([]segmentSubmission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segment file: %w", err)
	}
	var segments []segmentSubmission
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse segment file %s: %w", path, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("segment file %s contains no segments", path)
	}
	return segments, nil
}
