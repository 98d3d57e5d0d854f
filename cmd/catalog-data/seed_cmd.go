package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/catalog-api/modules/catalog/seed"
	"github.com/iota-uz/catalog-api/pkg/configuration"
)

func newSeedCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load frameworks and suppliers from the SEED_FILE fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				path := configuration.Use().SeedFile
				fixtures, err := seed.LoadFixtures(path)
				if err != nil {
					return withCode(exitValidation, err)
				}
				return writeJSONLine(map[string]any{
					"file":       path,
					"frameworks": len(fixtures.Frameworks),
					"suppliers":  len(fixtures.Suppliers),
				})
			}

			env, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.app.Seeder().Seed(env.requestContext(cmd.Context()), env.app); err != nil {
				return withCode(exitDB, fmt.Errorf("seed: %w", err))
			}
			return writeJSONLine(map[string]string{"seed": "ok"})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only parse and validate the fixtures file")
	return cmd
}
