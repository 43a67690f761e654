// Package cli implements the ragctl command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"legalrag/internal/indexer"
	"legalrag/internal/service"
)

// Services are the components the commands drive.
type Services struct {
	Documents service.DocumentService
	Search    service.SearchService
	Chat      service.ChatService
	Extractor service.Extractor
	Chunker   *indexer.Chunker
	// Close releases the underlying stores. May be nil.
	Close func() error
}

// Opener builds the services for one command invocation.
type Opener func(ctx context.Context) (*Services, error)

type cli struct {
	open     Opener
	services *Services
	jsonOut  bool
	readFile func(name string) ([]byte, error)
}

// NewRootCmd returns the ragctl root command. Services are opened lazily so
// help and flag errors never touch the stores.
func NewRootCmd(open Opener) *cobra.Command {
	c := &cli{open: open, readFile: os.ReadFile}

	root := &cobra.Command{
		Use:   "ragctl",
		Short: "Ingest and query legal documents",
		Long: `ragctl ingests documents into the vector store and queries them
with the same pipeline the API server uses.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "output results as JSON")

	root.AddCommand(
		c.ingestCmd(),
		c.searchCmd(),
		c.askCmd(),
		c.chunkCmd(),
	)
	return root
}

// withServices opens the services for fn and closes them afterwards,
// whether fn fails or not.
func (c *cli) withServices(fn func(cmd *cobra.Command, args []string, s *Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := c.ensure(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := c.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, s)
	}
}

func (c *cli) ensure(ctx context.Context) (*Services, error) {
	if c.services != nil {
		return c.services, nil
	}
	if c.open == nil {
		return nil, errors.New("services not configured")
	}
	s, err := c.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	c.services = s
	return s, nil
}

func (c *cli) close() error {
	if c.services == nil || c.services.Close == nil {
		return nil
	}
	err := c.services.Close()
	c.services = nil
	return err
}
