package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"legalrag/internal/service"
)

type askOutput struct {
	Response  string   `json:"response"`
	Context   []string `json:"context"`
	TimeTaken float64  `json:"time_taken"`
}

func (c *cli) askCmd() *cobra.Command {
	var k int
	var showContext bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from the indexed documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withServices(func(cmd *cobra.Command, args []string, s *Services) error {
			resp, err := s.Chat.Chat(cmd.Context(), service.ChatRequest{
				Message: strings.Join(args, " "),
				K:       k,
			})
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			if c.jsonOut {
				out := askOutput{Response: resp.Response, Context: resp.Context, TimeTaken: resp.TimeTaken.Seconds()}
				if out.Context == nil {
					out.Context = []string{}
				}
				return printJSON(cmd, out)
			}

			cmd.Println(resp.Response)
			if showContext {
				for i, text := range resp.Context {
					cmd.Printf("\n--- context %d ---\n%s\n", i+1, text)
				}
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "number of chunks to retrieve (0 uses SEARCH_K)")
	cmd.Flags().BoolVar(&showContext, "context", false, "print the retrieved context")
	return cmd
}
