package main

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/colocetudiant/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users, annonces, messages, tasks and expenses tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("schema ready")
		return nil
	},
}
