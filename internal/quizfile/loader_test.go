package quizfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"mathdrills/internal/domain"
	"mathdrills/internal/logging"
)

func TestLoadJSONList(t *testing.T) {
	path := writeFile(t, "capitals.json", `[
		{"question": "Capital of France?", "answer": "Paris"},
		{"question": "6 x 7?", "answer": 42, "options": [40, 41, 42, 43]}
	]`)

	doc, err := NewLoader(logging.Discard()).LoadQuiz(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Entries))
	}
	if doc.Entries[1].Answer != "42" || len(doc.Entries[1].Options) != 4 {
		t.Fatalf("numeric answer not normalised: %+v", doc.Entries[1])
	}
}

func TestLoadJSONObjectWithMetadataSkipsInvalidEntries(t *testing.T) {
	path := writeFile(t, "words.json", `{
		"metadata": {"title": "Spanish Words", "input_mode": "typed"},
		"questions": [
			{"question": "perro", "answer": "dog", "correct_answers": ["dog", "hound"]},
			{"question": "gato"},
			{"question": {"nested": true}, "answer": "x"}
		]
	}`)

	doc, err := NewLoader(logging.Discard()).LoadQuiz(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Title != "Spanish Words" || doc.InputMode != domain.InputTyped {
		t.Fatalf("metadata not applied: %+v", doc)
	}
	if len(doc.Entries) != 1 || len(doc.Invalid) != 2 {
		t.Fatalf("expected 1 valid and 2 invalid entries, got %d/%d (%v)", len(doc.Entries), len(doc.Invalid), doc.Invalid)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "planets.yaml", `
metadata:
  title: Planets
questions:
  - question: Largest planet?
    answer: Jupiter
    options: [Mars, Jupiter, Venus]
  - question: Planets in the solar system?
    answer: 8
`)
	doc, err := NewLoader(logging.Discard()).LoadQuiz(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Entries) != 2 || doc.Entries[1].Answer != "8" {
		t.Fatalf("unexpected entries %+v", doc.Entries)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"question", "answer", "options", "correct_answers"},
		{"Color of the sky?", "blue", "blue|red|green", ""},
		{"Color of grass?", "green", "", "green|verde"},
		{"", "orphan answer", "", ""},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	doc, err := NewLoader(logging.Discard()).LoadQuiz(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Entries) != 2 || len(doc.Invalid) != 1 {
		t.Fatalf("expected 2 entries and 1 invalid row, got %+v", doc)
	}
	if got := doc.Entries[1].CorrectAnswers; len(got) != 2 || got[1] != "verde" {
		t.Fatalf("unexpected correct answers %v", got)
	}
}

func TestLoadFailures(t *testing.T) {
	loader := NewLoader(logging.Discard())
	ctx := context.Background()

	if _, err := loader.LoadQuiz(ctx, filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := loader.LoadQuiz(ctx, writeFile(t, "bad.json", `{"title": "no questions"}`)); !errors.Is(err, domain.ErrQuizFileFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, err := loader.LoadQuiz(ctx, writeFile(t, "empty.json", `[{"question": "?"}]`)); !errors.Is(err, domain.ErrQuizFileFormat) {
		t.Fatalf("expected no valid questions error, got %v", err)
	}
	if _, err := loader.LoadQuiz(ctx, writeFile(t, "quiz.txt", "anything")); !errors.Is(err, domain.ErrQuizFileFormat) {
		t.Fatalf("expected unsupported extension, got %v", err)
	}
}

func TestSentinel(t *testing.T) {
	doc := Sentinel("broken.json", errors.New("boom"))
	if len(doc.Entries) != 1 || doc.Entries[0].Answer != "" || doc.LoadErr == nil {
		t.Fatalf("unexpected sentinel %+v", doc)
	}
	if doc.Entries[0].Question != "Error loading questions: boom" {
		t.Fatalf("unexpected sentinel prompt %q", doc.Entries[0].Question)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
