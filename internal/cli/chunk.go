package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) chunkCmd() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "chunk [file]",
		Short: "Show how a document would be chunked",
		Long: `Extracts the file and reports chunk length statistics using the
configured CHUNK_SIZE and CHUNK_OVERLAP. Nothing is embedded or stored.`,
		Args: cobra.ExactArgs(1),
		RunE: c.withServices(func(cmd *cobra.Command, args []string, s *Services) error {
			data, err := c.readFile(args[0])
			if err != nil {
				return err
			}
			text, err := s.Extractor.Extract(cmd.Context(), args[0], data)
			if err != nil {
				return fmt.Errorf("extract failed: %w", err)
			}

			stats := s.Chunker.Stats(text)
			if c.jsonOut {
				return printJSON(cmd, stats)
			}

			cmd.Printf("size=%d overlap=%d\n", s.Chunker.ChunkSize(), s.Chunker.Overlap())
			cmd.Printf("chunks=%d min=%d max=%d mean=%.2f p95=%d overlap_runes=%d\n",
				stats.Chunks, stats.Min, stats.Max, stats.Mean, stats.P95, stats.OverlapRunes)
			if show {
				for _, ch := range s.Chunker.Split(text) {
					cmd.Printf("\n--- chunk %d [%d:%d] ---\n%s\n", ch.Index, ch.Start, ch.End, ch.Text)
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&show, "show", false, "print every chunk")
	return cmd
}
