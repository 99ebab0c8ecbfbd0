package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mathdrills/internal/app"
	"mathdrills/internal/domain"
	"mathdrills/internal/infra/memory"
	"mathdrills/internal/infra/sqlite"
	"mathdrills/internal/quizfile"
	"mathdrills/internal/transport/terminal"
	"mathdrills/internal/variant"
)

type playFlags struct {
	total  int
	mode   string
	files  []string
	userID int64
}

func newPlayCmd(flags *globalFlags) *cobra.Command {
	pf := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play [quiz]",
		Short: "Play a quiz in the terminal; without a quiz name, show the menu",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := flags.setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			opts := app.StartOptions{Total: pf.total}
			if pf.mode != "" {
				mode, err := domain.ParseInputMode(pf.mode)
				if err != nil {
					return err
				}
				opts.Mode = mode
			}

			service, err := buildService(ctx, e, pf.files)
			if err != nil {
				return err
			}
			if pf.userID != 0 {
				if _, err := service.SelectUser(ctx, pf.userID); err != nil {
					return err
				}
			}

			shell := terminal.NewShell(service, cmd.InOrStdin(), cmd.OutOrStdout(), e.log)
			if len(args) == 1 {
				return shell.Play(ctx, args[0], opts)
			}
			return shell.Menu(ctx, opts)
		},
	}
	cmd.Flags().IntVarP(&pf.total, "total", "n", 0, "number of questions (default: per quiz or config)")
	cmd.Flags().StringVarP(&pf.mode, "mode", "m", "", "input mode: buttons, typed or self_assess")
	cmd.Flags().StringSliceVarP(&pf.files, "file", "f", nil, "quiz file to add (.json, .yaml, .xlsx); repeatable")
	cmd.Flags().Int64VarP(&pf.userID, "user", "u", 0, "user id to play as")
	return cmd
}

// buildService wires the quiz service to the database and registers the
// configured quiz files plus extra.
func buildService(ctx context.Context, e *env, extra []string) (*app.QuizService, error) {
	quizzes := memory.NewQuizRepository(quizfile.NewLoader(e.log), cacheTTL(e.cfg))
	service := app.NewQuizService(app.Dependencies{
		Variants: variant.Builtin(),
		Sessions: memory.NewSessionStore(),
		Quizzes:  quizzes,
		Scores:   sqlite.NewScoreStore(e.db, nil),
		Users:    sqlite.NewUserStore(e.db),
		Logger:   e.log,
	}, app.Defaults{
		Questions: e.cfg.Quiz.DefaultQuestions,
		InputMode: e.cfg.InputMode(),
	})

	files := append(append([]string{}, e.cfg.Quiz.Files...), extra...)
	for _, path := range files {
		name, err := service.RegisterQuizFile(ctx, path)
		if err != nil {
			return nil, err
		}
		e.log.WithFields(logrus.Fields{"path": path, "quiz": name}).Debug("quiz file registered")
	}
	return service, nil
}
