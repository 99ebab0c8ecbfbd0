package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"mathdrills/internal/app"
	"mathdrills/internal/domain"
	"mathdrills/internal/infra/memory"
	"mathdrills/internal/logging"
)

func TestShellPlaysFileQuizToCompletion(t *testing.T) {
	service, recorder := newTestService(t)
	name := registerWords(t, service)

	input := strings.Join([]string{
		"FOUR",  // correct, case-insensitive
		"",      // next
		"five",  // wrong
		":next", // completes
		":menu",
	}, "\n")
	var out bytes.Buffer
	shell := NewShell(service, strings.NewReader(input), &out, logging.Discard())
	if err := shell.Play(context.Background(), name, app.StartOptions{Mode: domain.InputTyped}); err != nil {
		t.Fatalf("play: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Question 1/2",
		"Correct! Well done!",
		"Wrong! The correct answer was four",
		"Quiz complete! file:number-words",
		"Anonymous scored 1/2 (50.0%)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != 1 {
		t.Fatalf("expected one recorded score of 1, got %v", recorder.calls)
	}
	if len(service.Variants()) != 7 {
		t.Fatalf("expected file quiz registered alongside builtins, got %v", service.Variants())
	}
}

func TestShellSelfAssessmentAndCommands(t *testing.T) {
	service, recorder := newTestService(t)
	name := registerWords(t, service)

	input := strings.Join([]string{
		"four",
		":reveal",
		":yes",
		":total 1",
		"",
		":bogus",
	}, "\n")
	var out bytes.Buffer
	shell := NewShell(service, strings.NewReader(input), &out, logging.Discard())
	if err := shell.Play(context.Background(), name, app.StartOptions{}); err != nil {
		t.Fatalf("play: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Think of the answer, then type :reveal",
		"operation not available in current input mode",
		"The answer is four",
		"Anonymous scored 1/1 (100.0%)",
		"unknown command :bogus",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if len(recorder.calls) != 1 {
		t.Fatalf("expected truncated quiz recorded once, got %v", recorder.calls)
	}
}

func TestShellRejectsNonNumericAnswers(t *testing.T) {
	service, _ := newTestService(t)
	var out bytes.Buffer
	shell := NewShell(service, strings.NewReader("abc\n:menu\n"), &out, logging.Discard())
	if err := shell.Play(context.Background(), "AdditionQuiz", app.StartOptions{Total: 3, Mode: domain.InputTyped}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "Please enter a whole number.") {
		t.Fatalf("expected validation message:\n%s", out.String())
	}
}

func TestShellButtonsByLetter(t *testing.T) {
	service, _ := newTestService(t)
	var out bytes.Buffer
	shell := NewShell(service, strings.NewReader("a\n"), &out, logging.Discard())
	if err := shell.Play(context.Background(), "MultiplicationQuiz", app.StartOptions{Total: 1, Mode: domain.InputButtons}); err != nil {
		t.Fatalf("play: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "  a) ") || !strings.Contains(got, "  d) ") {
		t.Fatalf("expected lettered options:\n%s", got)
	}
	if !strings.Contains(got, "Correct! Well done!") && !strings.Contains(got, "Wrong! The correct answer was") {
		t.Fatalf("expected feedback after picking an option:\n%s", got)
	}
}

func TestShellUnknownQuiz(t *testing.T) {
	service, _ := newTestService(t)
	shell := NewShell(service, strings.NewReader(""), &bytes.Buffer{}, logging.Discard())
	if err := shell.Play(context.Background(), "PoetryQuiz", app.StartOptions{}); err == nil {
		t.Fatalf("expected unknown quiz error")
	}
}

type scoreLog struct {
	calls []int
}

func (r *scoreLog) SaveScore(_ context.Context, _ string, score, _ int, _ string) (int64, error) {
	r.calls = append(r.calls, score)
	return int64(len(r.calls)), nil
}

func newTestService(t *testing.T) (*app.QuizService, *scoreLog) {
	t.Helper()
	recorder := &scoreLog{}
	loader := memory.NewStaticQuizLoader(map[string]domain.QuizDocument{
		"words.yaml": {
			Title: "Number Words",
			Entries: []domain.QuizEntry{
				{Question: "2 + 2 in words?", Answer: "four"},
				{Question: "Square root of 16 in words?", Answer: "four"},
			},
		},
	})
	service := app.NewQuizService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Quizzes:  memory.NewQuizRepository(loader, time.Minute),
		Scores:   recorder,
		Logger:   logging.Discard(),
	}, app.Defaults{InputMode: domain.InputButtons})
	return service, recorder
}

func registerWords(t *testing.T, service *app.QuizService) string {
	t.Helper()
	name, err := service.RegisterQuizFile(context.Background(), "words.yaml")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return name
}

func TestShellMenu(t *testing.T) {
	service, recorder := newTestService(t)
	input := strings.Join([]string{
		"PoetryQuiz",
		"1", // AdditionQuiz
		":total 1",
		":menu",
		"q",
	}, "\n")
	var out bytes.Buffer
	shell := NewShell(service, strings.NewReader(input), &out, logging.Discard())
	if err := shell.Menu(context.Background(), app.StartOptions{Mode: domain.InputTyped}); err != nil {
		t.Fatalf("menu: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "1) AdditionQuiz") || !strings.Contains(got, "unknown quiz variant") {
		t.Fatalf("unexpected menu output:\n%s", got)
	}
	if !strings.Contains(got, "AdditionQuiz for Anonymous") {
		t.Fatalf("expected quiz to start from menu:\n%s", got)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("abandoned quiz must not be recorded, got %v", recorder.calls)
	}
}
