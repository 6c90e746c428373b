package main

import (
	"time"

	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/internal/service"

	"github.com/spf13/cobra"
)

var sweepGrace time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep-orphans",
	Short: "Answer questions that never received an answer",
	Long: `Finds questions older than the grace period without an answer, typically left
behind by a crash, and records the interrupted-processing answer for each.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}

		grace := sweepGrace
		if grace <= 0 {
			grace = cfg.Rag.OrphanGrace
		}

		sweeper := service.NewOrphanSweeper(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
		n, err := sweeper.Sweep(cmd.Context(), grace)
		if err != nil {
			return err
		}
		cmd.Printf("Answered %d orphaned questions.\n", n)
		return nil
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepGrace, "grace", 0, "minimum question age (default ORPHAN_GRACE_MINUTES)")
	rootCmd.AddCommand(sweepCmd)
}
