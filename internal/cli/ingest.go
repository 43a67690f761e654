package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"legalrag/internal/service"
)

func (c *cli) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Extract, chunk and index documents",
		Long: `Extracts text from each file, splits it into overlapping chunks and
stores their embeddings. A failing file does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.withServices(func(cmd *cobra.Command, args []string, s *Services) error {
			var results []service.UploadResponse
			var errs []error
			for _, path := range args {
				data, err := c.readFile(path)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				resp, err := s.Documents.Upload(cmd.Context(), service.UploadRequest{Filename: path, Data: data})
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				results = append(results, resp)
			}

			if c.jsonOut {
				if results == nil {
					results = []service.UploadResponse{}
				}
				if err := printJSON(cmd, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					cmd.Printf("%s: %s (%d chars, %d chunks)\n", r.Filename, r.Status, r.ExtractedChars, r.Chunks)
				}
			}

			for _, err := range errs {
				cmd.PrintErrf("error: %v\n", err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d files failed: %w", len(errs), len(args), errors.Join(errs...))
			}
			return nil
		}),
	}
}
