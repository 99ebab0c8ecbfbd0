// Package quizfile reads question/answer quizzes from JSON, YAML and XLSX files.
package quizfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"mathdrills/internal/domain"
)

// Loader parses quiz files. Invalid entries are skipped and reported on the
// returned document; a file with no usable entries is an error.
type Loader struct {
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewLoader(log logrus.FieldLogger) *Loader {
	return &Loader{
		validate: validator.New(),
		log:      log.WithField("component", "quizfile"),
	}
}

// Sentinel returns a one-question document carrying the load error as its
// prompt, so a quiz can still be started when its file is unusable.
func Sentinel(path string, err error) domain.QuizDocument {
	return domain.QuizDocument{
		Path:    path,
		LoadErr: err,
		Entries: []domain.QuizEntry{{Question: fmt.Sprintf("Error loading questions: %v", err)}},
	}
}

// LoadQuiz reads the quiz at path; the format follows the file extension.
func (l *Loader) LoadQuiz(ctx context.Context, path string) (domain.QuizDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuizDocument{}, err
	}

	var (
		doc domain.QuizDocument
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		doc, err = l.loadJSON(path)
	case ".yaml", ".yml":
		doc, err = l.loadYAML(path)
	case ".xlsx":
		doc, err = l.loadXLSX(path)
	default:
		err = fmt.Errorf("%w: unsupported extension %q", domain.ErrQuizFileFormat, filepath.Ext(path))
	}
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("load quiz %s: %w", path, err)
	}
	doc.Path = path

	for _, problem := range doc.Invalid {
		l.log.WithField("path", path).Warn(problem)
	}
	if len(doc.Entries) == 0 {
		return domain.QuizDocument{}, fmt.Errorf("load quiz %s: %w: no valid questions", path, domain.ErrQuizFileFormat)
	}
	l.log.WithFields(logrus.Fields{"path": path, "questions": len(doc.Entries)}).Debug("quiz file loaded")
	return doc, nil
}

type metadata struct {
	Title     string `json:"title" yaml:"title"`
	InputMode string `json:"input_mode" yaml:"input_mode"`
}

// text accepts both strings and bare scalars such as numbers.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar, got %s", data)
	default:
		*t = text(data)
	}
	return nil
}

func (t *text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	*t = text(node.Value)
	return nil
}

type rawEntry struct {
	Question       text   `json:"question" yaml:"question"`
	Answer         text   `json:"answer" yaml:"answer"`
	Options        []text `json:"options" yaml:"options"`
	CorrectAnswers []text `json:"correct_answers" yaml:"correct_answers"`
}

func (l *Loader) loadJSON(path string) (domain.QuizDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuizDocument{}, err
	}
	data = bytes.TrimSpace(data)

	var (
		meta    metadata
		entries []json.RawMessage
	)
	switch {
	case len(data) > 0 && data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return domain.QuizDocument{}, err
		}
	case len(data) > 0 && data[0] == '{':
		var wrapper struct {
			Metadata  metadata          `json:"metadata"`
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return domain.QuizDocument{}, err
		}
		if wrapper.Questions == nil {
			return domain.QuizDocument{}, fmt.Errorf("%w: missing \"questions\" key", domain.ErrQuizFileFormat)
		}
		meta, entries = wrapper.Metadata, wrapper.Questions
	default:
		return domain.QuizDocument{}, fmt.Errorf("%w: expected a list or an object", domain.ErrQuizFileFormat)
	}

	doc := l.newDocument(meta)
	for i, raw := range entries {
		var entry rawEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			doc.Invalid = append(doc.Invalid, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		l.accept(&doc, i, entry)
	}
	return doc, nil
}

func (l *Loader) loadYAML(path string) (domain.QuizDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuizDocument{}, err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return domain.QuizDocument{}, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return domain.QuizDocument{}, fmt.Errorf("%w: empty document", domain.ErrQuizFileFormat)
	}

	var (
		meta  metadata
		items []*yaml.Node
	)
	top := root.Content[0]
	switch top.Kind {
	case yaml.SequenceNode:
		items = top.Content
	case yaml.MappingNode:
		var wrapper struct {
			Metadata  metadata  `yaml:"metadata"`
			Questions yaml.Node `yaml:"questions"`
		}
		if err := top.Decode(&wrapper); err != nil {
			return domain.QuizDocument{}, err
		}
		if wrapper.Questions.Kind != yaml.SequenceNode {
			return domain.QuizDocument{}, fmt.Errorf("%w: missing \"questions\" list", domain.ErrQuizFileFormat)
		}
		meta, items = wrapper.Metadata, wrapper.Questions.Content
	default:
		return domain.QuizDocument{}, fmt.Errorf("%w: expected a list or a mapping", domain.ErrQuizFileFormat)
	}

	doc := l.newDocument(meta)
	for i, item := range items {
		var entry rawEntry
		if err := item.Decode(&entry); err != nil {
			doc.Invalid = append(doc.Invalid, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		l.accept(&doc, i, entry)
	}
	return doc, nil
}

// loadXLSX reads the first sheet: question | answer | options | correct answers,
// with list cells separated by "|". A header row is skipped.
func (l *Loader) loadXLSX(path string) (domain.QuizDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.QuizDocument{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	doc := l.newDocument(metadata{})
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "question") {
			continue
		}
		entry := rawEntry{
			Question:       text(cell(row, 0)),
			Answer:         text(cell(row, 1)),
			Options:        splitList(cell(row, 2)),
			CorrectAnswers: splitList(cell(row, 3)),
		}
		l.accept(&doc, i, entry)
	}
	return doc, nil
}

func (l *Loader) newDocument(meta metadata) domain.QuizDocument {
	doc := domain.QuizDocument{Title: strings.TrimSpace(meta.Title)}
	if meta.InputMode != "" {
		mode, err := domain.ParseInputMode(meta.InputMode)
		if err != nil {
			doc.Invalid = append(doc.Invalid, fmt.Sprintf("metadata: %v", err))
		} else {
			doc.InputMode = mode
		}
	}
	return doc
}

func (l *Loader) accept(doc *domain.QuizDocument, index int, raw rawEntry) {
	entry := domain.QuizEntry{
		Question:       strings.TrimSpace(string(raw.Question)),
		Answer:         strings.TrimSpace(string(raw.Answer)),
		Options:        trimAll(raw.Options),
		CorrectAnswers: trimAll(raw.CorrectAnswers),
	}
	if err := l.validate.Struct(entry); err != nil {
		doc.Invalid = append(doc.Invalid, fmt.Sprintf("question %d: %v", index+1, err))
		return
	}
	doc.Entries = append(doc.Entries, entry)
}

func trimAll(values []text) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(string(v)))
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func splitList(raw string) []text {
	var out []text
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, text(part))
		}
	}
	return out
}
