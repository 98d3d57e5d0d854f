package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.app.Migrations().Run(cmd.Context()); err != nil {
				return withCode(exitDB, fmt.Errorf("migrate up: %w", err))
			}
			return writeJSONLine(map[string]string{"migrate": "up", "status": "ok"})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.app.Migrations().Rollback(cmd.Context()); err != nil {
				return withCode(exitDB, fmt.Errorf("migrate down: %w", err))
			}
			return writeJSONLine(map[string]string{"migrate": "down", "status": "ok"})
		},
	})
	return cmd
}
