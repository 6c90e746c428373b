package main

import (
	"docqa-be/internal/migration"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the pgvector extension, tables and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		if err := migration.Run(db); err != nil {
			return err
		}
		cmd.Println("Migration complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
