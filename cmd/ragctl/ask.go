package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/dto"

	"github.com/spf13/cobra"
)

var (
	askUser    uint
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		container := bootstrap.NewContainer(db, cfg)
		defer container.Close()

		req := &dto.QuestionRequest{Question: args[0]}
		if askSession != "" {
			req.SessionId = &askSession
		}

		res, err := container.RagService.ProcessQuestion(cmd.Context(), askUser, req)
		if err != nil {
			return err
		}

		if askJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal answer: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		cmd.Println(res.Answer)
		cmd.Println()
		cmd.Printf("confidence %.2f, question %d\n", res.ConfidenceScore, res.QuestionId)
		for _, s := range res.Sources {
			page := "-"
			if s.PageNumber != nil {
				page = strconv.Itoa(*s.PageNumber)
			}
			cmd.Printf("  [%s p.%s chunk %d] %.2f\n", s.Filename, page, s.ChunkIndex, s.RelevanceScore)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().UintVar(&askUser, "user", 1, "user id to record the question under")
	askCmd.Flags().StringVar(&askSession, "session", "", "session id")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func parseFileID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid file id %q", s)
	}
	return uint(id), nil
}
