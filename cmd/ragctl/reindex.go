package main

import (
	"fmt"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/entity"

	"github.com/spf13/cobra"
)

var reindexAll bool

var reindexCmd = &cobra.Command{
	Use:   "reindex [file-id...]",
	Short: "Extract, embed and index documents again",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !reindexAll {
			return fmt.Errorf("pass file ids or --all")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		container := bootstrap.NewContainer(db, cfg)
		defer container.Close()

		ctx := cmd.Context()
		files := container.UowFactory.NewUnitOfWork(ctx).FileRepository()

		var targets []*entity.File
		if reindexAll {
			targets, err = files.FindAllByTypes(ctx, entity.SupportedFileTypes)
			if err != nil {
				return err
			}
		} else {
			for _, arg := range args {
				id, err := parseFileID(arg)
				if err != nil {
					return err
				}
				file, err := files.FindById(ctx, id)
				if err != nil {
					return err
				}
				if file == nil {
					return fmt.Errorf("file %d not found", id)
				}
				targets = append(targets, file)
			}
		}

		for _, file := range targets {
			pf, err := container.IndexerService.Reindex(ctx, file)
			if err != nil {
				cmd.PrintErrf("%d %s: %v\n", file.Id, file.OriginalFilename, err)
				continue
			}
			cmd.Printf("%d %s: %s, %d chunks\n", file.Id, file.OriginalFilename, pf.Status, pf.ChunkCount)
		}
		return nil
	},
}

func init() {
	reindexCmd.Flags().BoolVar(&reindexAll, "all", false, "reindex every stored document")
	rootCmd.AddCommand(reindexCmd)
}
