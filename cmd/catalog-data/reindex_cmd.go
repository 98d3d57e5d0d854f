package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/catalog-api/modules/catalog/services"
)

func newReindexCmd() *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push every published service on a live framework to the search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize < 0 {
				return withCode(exitUsage, fmt.Errorf("--batch-size must be non-negative, got %d", batchSize))
			}
			env, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			catalog := env.app.Service(services.CatalogService{}).(*services.CatalogService)
			result, err := catalog.Reindex(env.requestContext(cmd.Context()), batchSize)
			if err != nil {
				return withCode(exitDB, fmt.Errorf("reindex: %w", err))
			}
			if err := writeJSONLine(map[string]int{"indexed": result.Indexed, "failed": result.Failed}); err != nil {
				return err
			}
			if result.Failed > 0 {
				return withCode(exitPartial, fmt.Errorf("reindex: %d services failed", result.Failed))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Services fetched per page (default PAGE_SIZE)")
	return cmd
}
