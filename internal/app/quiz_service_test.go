package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mathdrills/internal/app"
	"mathdrills/internal/domain"
	"mathdrills/internal/infra/memory"
	"mathdrills/internal/logging"
)

func TestStartQuizAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&fakeRecorder{}, nil)

	session, err := service.StartQuiz(ctx, "MultiplicationQuiz", app.StartOptions{})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if session.State() != domain.StateInProgress || session.ScoreView().Total != 5 {
		t.Fatalf("unexpected session %s %+v", session.State(), session.ScoreView())
	}
	if session.Mode() != domain.InputTyped {
		t.Fatalf("expected configured mode, got %s", session.Mode())
	}
	if got, err := service.Session(session.ID()); err != nil || got != session {
		t.Fatalf("session lookup failed: %v", err)
	}

	session, err = service.StartQuiz(ctx, "additionquiz", app.StartOptions{Total: 2, Mode: domain.InputButtons})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if session.ScoreView().Total != 2 || session.Mode() != domain.InputButtons || session.QuizType() != "AdditionQuiz" {
		t.Fatalf("explicit options ignored: %s %+v", session.Mode(), session.ScoreView())
	}

	if _, err := service.StartQuiz(ctx, "PoetryQuiz", app.StartOptions{}); !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected unknown variant, got %v", err)
	}
}

func TestReturnToMenuDropsSession(t *testing.T) {
	service := newTestService(nil, nil)
	session, err := service.StartQuiz(context.Background(), "DivisionQuiz", app.StartOptions{})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if err := service.ReturnToMenu(session.ID()); err != nil {
		t.Fatalf("return to menu: %v", err)
	}
	if _, err := service.Session(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session dropped, got %v", err)
	}
	if err := service.ReturnToMenu(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSelectUserRetagsRunningSessions(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}
	users := fakeUsers{2: {ID: 2, Username: "alice", DisplayName: "Alice"}}
	service := newTestService(recorder, users)

	if got := service.CurrentUser(); got.ID != domain.AnonymousUserID {
		t.Fatalf("expected anonymous by default, got %+v", got)
	}
	session, err := service.StartQuiz(ctx, "AdditionQuiz", app.StartOptions{Total: 1, Mode: domain.InputSelfAssess})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if _, err := service.SelectUser(ctx, 9); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := service.SelectUser(ctx, 2); err != nil {
		t.Fatalf("select user: %v", err)
	}

	_ = session.Reveal()
	_ = session.SelfReport(true)
	if err := session.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].player != "Alice" {
		t.Fatalf("expected score under Alice, got %+v", recorder.calls)
	}

	if user, err := service.SelectUser(ctx, domain.AnonymousUserID); err != nil || user.DisplayName != domain.AnonymousName {
		t.Fatalf("select anonymous: %+v %v", user, err)
	}
}

func TestRegisterQuizFile(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewStaticQuizLoader(map[string]domain.QuizDocument{
		"capitals.yaml": {
			Title:     "World Capitals",
			InputMode: domain.InputTyped,
			Entries: []domain.QuizEntry{
				{Question: "Capital of France?", Answer: "Paris"},
				{Question: "Capital of Italy?", Answer: "Rome"},
			},
		},
	})
	service := app.NewQuizService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Quizzes:  memory.NewQuizRepository(loader, time.Minute),
		Logger:   logging.Discard(),
	}, app.Defaults{Questions: 10, InputMode: domain.InputButtons})

	name, err := service.RegisterQuizFile(ctx, "capitals.yaml")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if name != "file:world-capitals" {
		t.Fatalf("unexpected name %q", name)
	}
	session, err := service.StartQuiz(ctx, name, app.StartOptions{})
	if err != nil {
		t.Fatalf("start file quiz: %v", err)
	}
	if session.ScoreView().Total != 2 || session.Mode() != domain.InputTyped {
		t.Fatalf("expected deck total and file mode, got %s %+v", session.Mode(), session.ScoreView())
	}
	if _, err := session.SubmitAnswer(" paris "); err != nil {
		t.Fatalf("submit: %v", err)
	}

	broken, err := service.RegisterQuizFile(ctx, "missing.json")
	if err != nil {
		t.Fatalf("register broken: %v", err)
	}
	session, err = service.StartQuiz(ctx, broken, app.StartOptions{})
	if err != nil {
		t.Fatalf("start broken quiz: %v", err)
	}
	view := session.QuestionView()
	if view.Total != 1 || !strings.HasPrefix(view.Prompt, "Error loading questions") {
		t.Fatalf("expected sentinel question, got %+v", view)
	}
	if session.Mode() != domain.InputSelfAssess {
		t.Fatalf("expected self-assess for file quiz, got %s", session.Mode())
	}
}

type fakeUsers map[int64]domain.User

func (u fakeUsers) Get(_ context.Context, id int64) (domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func newTestService(recorder app.ScoreRecorder, users app.UserDirectory) *app.QuizService {
	return app.NewQuizService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Scores:   recorder,
		Users:    users,
		Logger:   logging.Discard(),
	}, app.Defaults{Questions: 5, InputMode: domain.InputTyped})
}
