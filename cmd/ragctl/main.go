package main

import (
	"fmt"
	"os"

	"docqa-be/internal/config"
	"docqa-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Operate the document QA backend",
	Long: `ragctl runs maintenance tasks against the document QA database:
schema migration, orphaned question cleanup, reindexing and one-off questions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	pool := database.DefaultPoolConfig()
	pool.MaxIdleConns = cfg.Database.MaxIdleConns
	pool.MaxOpenConns = cfg.Database.MaxOpenConns
	return database.NewGormDBFromDSN(cfg.Database.Connection, pool, false)
}
