// Package terminal drives quiz sessions from a line-oriented terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"mathdrills/internal/app"
	"mathdrills/internal/domain"
)

const optionLetters = "abcdefghij"

// Shell reads commands from in and renders the session to out.
//
//	<answer>     submit a typed answer, or pick an option by letter
//	:next        go to the next question (an empty line works too)
//	:restart     start the quiz over
//	:menu        leave the quiz
//	:total N     change the number of questions
//	:user ID     switch the active learner
//	:mode M      switch input mode (buttons, typed, self_assess)
//	:reveal      show the answer (self-assessment)
//	:yes / :no   report whether you knew it (self-assessment)
type Shell struct {
	service *app.QuizService
	in      *bufio.Scanner
	out     io.Writer
	log     logrus.FieldLogger
}

func NewShell(service *app.QuizService, in io.Reader, out io.Writer, log logrus.FieldLogger) *Shell {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Shell{service: service, in: bufio.NewScanner(in), out: out, log: log}
}

// Menu lists the quiz types and plays the chosen one, until the learner types
// q or input ends.
func (s *Shell) Menu(ctx context.Context, opts app.StartOptions) error {
	for {
		names := s.service.Variants()
		s.printf("\nPlaying as %s. Choose a quiz (q to quit):\n", s.service.CurrentUser().DisplayName)
		for i, name := range names {
			s.printf("  %d) %s\n", i+1, name)
		}
		if !s.in.Scan() {
			return s.in.Err()
		}
		choice := strings.TrimSpace(s.in.Text())
		if choice == "q" || choice == ":quit" {
			return nil
		}
		name := choice
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(names) {
			name = names[n-1]
		}
		if err := s.Play(ctx, name, opts); err != nil {
			if errors.Is(err, domain.ErrNotImplemented) {
				return err
			}
			s.printf("%v\n", err)
		}
	}
}

// Play runs one quiz until the learner returns to the menu or input ends.
func (s *Shell) Play(ctx context.Context, quizName string, opts app.StartOptions) error {
	session, err := s.service.StartQuiz(ctx, quizName, opts)
	if err != nil {
		return err
	}
	s.printf("%s for %s. Type :menu to leave.\n", session.QuizType(), s.service.CurrentUser().DisplayName)
	s.render(session)

	for s.in.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(s.in.Text())
		done, err := s.handle(ctx, session, line)
		if err != nil {
			if !s.report(err) {
				return err
			}
		}
		if done {
			return nil
		}
		s.render(session)
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_ = s.service.ReturnToMenu(session.ID())
	return nil
}

func (s *Shell) handle(ctx context.Context, session *app.Session, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	s.log.WithFields(logrus.Fields{"cmd": cmd, "arg": arg}).Debug("shell command")

	switch {
	case line == "" && session.Phase() == domain.PhaseAnswerShown, cmd == ":next":
		return false, session.Advance(ctx)
	case line == "":
		return false, nil
	case cmd == ":restart":
		return false, session.Restart()
	case cmd == ":menu":
		return true, s.service.ReturnToMenu(session.ID())
	case cmd == ":total":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, domain.ErrInvalidTotal
		}
		return false, session.SetTotalQuestions(ctx, n)
	case cmd == ":user":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return false, domain.ErrUserNotFound
		}
		user, err := s.service.SelectUser(ctx, id)
		if err == nil {
			s.printf("Now playing as %s.\n", user.DisplayName)
		}
		return false, err
	case cmd == ":mode":
		return false, session.SetInputMode(domain.InputMode(arg))
	case cmd == ":reveal":
		return false, session.Reveal()
	case cmd == ":yes":
		return false, session.SelfReport(true)
	case cmd == ":no":
		return false, session.SelfReport(false)
	case strings.HasPrefix(cmd, ":"):
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	if session.EffectiveMode() == domain.InputButtons && len(line) == 1 {
		if i := strings.IndexByte(optionLetters, strings.ToLower(line)[0]); i >= 0 {
			_, err := session.SelectOption(i)
			return false, err
		}
	}
	_, err := session.SubmitAnswer(line)
	return false, err
}

// report prints recoverable errors and tells whether the loop may continue.
func (s *Shell) report(err error) bool {
	switch {
	case errors.Is(err, domain.ErrScoreNotSaved):
		s.log.WithError(err).Warn("score not saved")
		return true
	case errors.Is(err, domain.ErrNotImplemented):
		return false
	case errors.Is(err, domain.ErrInvalidAnswer):
		s.printf("Please enter a whole number.\n")
	default:
		s.printf("%v\n", err)
	}
	return true
}

func (s *Shell) render(session *app.Session) {
	if session.State() == domain.StateCompleted {
		s.renderResults(session)
		return
	}
	view := session.QuestionView()
	score := session.ScoreView()
	s.printf("\nQuestion %d/%d   Score: %d/%d\n", view.Number, view.Total, score.Correct, score.Answered)
	s.printf("%s\n", view.Prompt)

	switch view.Phase {
	case domain.PhaseAwaitingAnswer:
		switch view.Mode {
		case domain.InputButtons:
			for i, opt := range view.Options {
				s.printf("  %s) %s\n", optionLabel(i), opt)
			}
		case domain.InputSelfAssess:
			s.printf("Think of the answer, then type :reveal\n")
		}
	case domain.PhaseRevealed:
		s.printf("%s\nDid you know it? (:yes / :no)\n", view.Feedback)
	case domain.PhaseAnswerShown:
		if view.Feedback != "" {
			s.printf("%s\n", view.Feedback)
		}
		s.printf("Press enter for the next question.\n")
	}
}

func (s *Shell) renderResults(session *app.Session) {
	results, ok := session.ResultsView()
	if !ok {
		return
	}
	s.printf("\nQuiz complete! %s\n", results.QuizType)
	s.printf("%s scored %d/%d (%.1f%%)\n", results.Player, results.Score, results.Total, results.Percentage)
	if results.Warning != "" {
		s.printf("Warning: score not saved: %s\n", results.Warning)
	}
	s.printf("Type :restart to play again or :menu to return.\n")
}

func optionLabel(i int) string {
	if i < len(optionLetters) {
		return optionLetters[i : i+1]
	}
	return strconv.Itoa(i + 1)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
