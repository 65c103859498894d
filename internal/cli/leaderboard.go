package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"

	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints or clears the stored leaderboard.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logger)
			defer log.Sync() //nolint:errcheck

			d, err := buildDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			if clearAll {
				if err := d.service.ClearLeaderboard(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "leaderboard cleared")
				return nil
			}
			entries, err := d.service.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove all stored results")
	return cmd
}

func printLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no results yet")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAYER\tSCORE\tPCT\tCATEGORY\tDIFFICULTY\tDATE")
	for i, e := range entries {
		name := e.PlayerName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d%%\t%s\t%s\t%s\n",
			i+1, name, e.Score, e.TotalQuestions, e.Percentage, e.Category, e.Difficulty,
			e.CompletedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
