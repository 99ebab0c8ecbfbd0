package variant

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"mathdrills/internal/domain"
)

const exhaustedPrompt = "No more questions"

// FileQuiz serves the entries of a quiz document in shuffled order. It keeps a
// cursor, so every session needs its own instance.
type FileQuiz struct {
	name  string
	doc   domain.QuizDocument
	order []int
	next  int
}

func NewFileQuiz(name string, doc domain.QuizDocument) *FileQuiz {
	return &FileQuiz{name: name, doc: doc}
}

// FileQuizName derives the quiz type for a document from its title, falling
// back to the file name.
func FileQuizName(doc domain.QuizDocument) string {
	base := doc.Title
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
	}
	return "file:" + slug.Make(base)
}

func (q *FileQuiz) Name() string             { return q.name }
func (q *FileQuiz) Kind() domain.VariantKind { return domain.KindFileBased }
func (q *FileQuiz) DefaultTotal() int        { return q.Len() }
func (q *FileQuiz) Len() int                 { return len(q.doc.Entries) }

// PreferredMode is the document's input mode, self-assessment by default.
func (q *FileQuiz) PreferredMode() domain.InputMode {
	if q.doc.InputMode != "" {
		return q.doc.InputMode
	}
	return domain.InputSelfAssess
}

func (q *FileQuiz) Reset(rnd *rand.Rand) {
	q.order = rnd.Perm(len(q.doc.Entries))
	q.next = 0
}

func (q *FileQuiz) GenerateQuestion(rnd *rand.Rand) (domain.Question, error) {
	if q.order == nil {
		q.Reset(rnd)
	}
	if q.next >= len(q.order) {
		return domain.Question{Prompt: exhaustedPrompt, PromptWithAnswer: exhaustedPrompt, Expected: domain.TextAnswer("")}, nil
	}
	entry := q.doc.Entries[q.order[q.next]]
	q.next++

	question := domain.Question{
		Expected:         fileAnswer(entry),
		Prompt:           entry.Question,
		PromptWithAnswer: fmt.Sprintf("%s\nAnswer: %s", entry.Question, entry.Answer),
	}
	if len(entry.Options) > 0 {
		question.Options = append([]string(nil), entry.Options...)
	}
	if len(entry.CorrectAnswers) > 0 {
		question.Accepted = append([]string(nil), entry.CorrectAnswers...)
	}
	return question, nil
}

// fileAnswer treats whole-number answers as numeric so they get generated
// options. Entries with their own options or alternative answers stay text.
func fileAnswer(entry domain.QuizEntry) domain.Answer {
	if len(entry.Options) == 0 && len(entry.CorrectAnswers) == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(entry.Answer)); err == nil {
			return domain.NumberAnswer(n)
		}
	}
	return domain.TextAnswer(entry.Answer)
}
