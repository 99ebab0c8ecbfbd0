package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mathdrills/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.QuizDocument{
			"capitals.json": sampleDocument(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	doc, err := repo.GetQuiz(context.Background(), "capitals.json")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if doc.Path != "capitals.json" || len(doc.Entries) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "capitals.json"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	repo.Invalidate("capitals.json")
	if _, err := repo.GetQuiz(context.Background(), "capitals.json"); err != nil {
		t.Fatalf("get quiz 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.QuizDocument{
			"capitals.json": sampleDocument(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuiz(context.Background(), "capitals.json")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "capitals.json")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryDoesNotCacheFailures(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(nil)}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuiz(context.Background(), "missing.json"); !errors.Is(err, domain.ErrQuizFileFormat) {
			t.Fatalf("expected load error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected failures to hit the loader each time, got %d", loader.calls)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, path string) (domain.QuizDocument, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, path)
}

func sampleDocument() domain.QuizDocument {
	return domain.QuizDocument{
		Title: "Capitals",
		Entries: []domain.QuizEntry{
			{Question: "Capital of France?", Answer: "Paris"},
			{Question: "Capital of Italy?", Answer: "Rome"},
		},
	}
}
