package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mathdrills/internal/domain"
	"mathdrills/internal/infra/sqlite"
)

func newScoresCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show recorded results",
	}

	var quizType string
	var limit int
	top := &cobra.Command{
		Use:   "top",
		Short: "Best results, optionally for one quiz type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScores(cmd, flags, func(store *sqlite.ScoreStore) error {
				records, err := store.TopScores(cmd.Context(), quizType, limit)
				if err != nil {
					return err
				}
				printRecords(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
	top.Flags().StringVarP(&quizType, "quiz", "q", "", "quiz type (default: all)")
	top.Flags().IntVarP(&limit, "limit", "l", 10, "number of results")

	var historyLimit int
	history := &cobra.Command{
		Use:   "history <player>",
		Short: "A player's most recent results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScores(cmd, flags, func(store *sqlite.ScoreStore) error {
				records, err := store.PlayerHistory(cmd.Context(), args[0], historyLimit)
				if err != nil {
					return err
				}
				printRecords(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
	history.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of results")

	var statsQuiz string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics, optionally for one quiz type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScores(cmd, flags, func(store *sqlite.ScoreStore) error {
				s, err := store.Statistics(cmd.Context(), statsQuiz)
				if err != nil {
					return err
				}
				printStatistics(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
	stats.Flags().StringVarP(&statsQuiz, "quiz", "q", "", "quiz type (default: all)")

	types := &cobra.Command{
		Use:   "types",
		Short: "Quiz types with recorded results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScores(cmd, flags, func(store *sqlite.ScoreStore) error {
				names, err := store.QuizTypes(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(top, history, stats, types)
	return cmd
}

func withScores(cmd *cobra.Command, flags *globalFlags, fn func(*sqlite.ScoreStore) error) error {
	e, err := flags.setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(sqlite.NewScoreStore(e.db, nil))
}

func printRecords(out io.Writer, records []domain.ScoreRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No scores yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tQUIZ\tSCORE\tPERCENT\tDATE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%.1f%%\t%s\n",
			r.PlayerName, r.QuizType, r.Score, r.TotalQuestions, r.Percentage,
			r.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printStatistics(out io.Writer, s domain.ScoreStatistics) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Quizzes taken\t%d\n", s.TotalQuizzes)
	fmt.Fprintf(w, "Average\t%.1f%%\n", s.AvgPercentage)
	fmt.Fprintf(w, "Best\t%.1f%%\n", s.MaxPercentage)
	fmt.Fprintf(w, "Worst\t%.1f%%\n", s.MinPercentage)
	fmt.Fprintf(w, "Average score\t%.1f\n", s.AvgScore)
	fmt.Fprintf(w, "Correct answers\t%d/%d\n", s.TotalCorrectAnswers, s.TotalQuestionsAsked)
	w.Flush()
}
