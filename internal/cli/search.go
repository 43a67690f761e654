package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"legalrag/internal/rag"
	"legalrag/internal/service"
)

func (c *cli) searchCmd() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search indexed documents",
		Long: `Returns the chunks nearest to the query by cosine similarity,
without generating an answer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.withServices(func(cmd *cobra.Command, args []string, s *Services) error {
			results, err := s.Search.Search(cmd.Context(), service.SearchRequest{
				Query: strings.Join(args, " "),
				K:     k,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if c.jsonOut {
				return printJSON(cmd, results)
			}
			printChunks(cmd, results)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", rag.DefaultK, "number of chunks to return")
	return cmd
}

func printChunks(cmd *cobra.Command, chunks []rag.RetrievedChunk) {
	if len(chunks) == 0 {
		cmd.Println("No results found.")
		return
	}
	for _, ch := range chunks {
		cmd.Printf("[%d] %s #%d (%.3f)\n", ch.Rank, ch.Source, ch.ChunkIndex, ch.Score)
		cmd.Printf("    %s\n\n", strings.ReplaceAll(strings.TrimSpace(ch.Text), "\n", "\n    "))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
