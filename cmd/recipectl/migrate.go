package main

import (
	"github.com/spf13/cobra"

	"github.com/redmonkez12/recipe-api/cmd/recipectl/ui"
	"github.com/redmonkez12/recipe-api/internal/config"
	"github.com/redmonkez12/recipe-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadDatabase()
			if err := database.RunMigrations(cfg.URL()); err != nil {
				return err
			}
			ui.PrintSuccess("Migrations applied.")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg := config.LoadDatabase()
			if err := database.RollbackMigrations(cfg.URL(), steps); err != nil {
				return err
			}
			ui.PrintSuccess("Migrations rolled back.")
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}
