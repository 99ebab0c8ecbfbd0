package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AnonymousUserID is the reserved id of the Anonymous user.
const AnonymousUserID int64 = 1

// AnonymousName is used to tag scores when no user is selected.
const AnonymousName = "Anonymous"

// VariantKind identifies the family a quiz variant belongs to.
type VariantKind string

const (
	KindAddition            VariantKind = "addition"
	KindMultiplication      VariantKind = "multiplication"
	KindSmallMultiplication VariantKind = "small_multiplication"
	KindSubtraction         VariantKind = "subtraction"
	KindDivision            VariantKind = "division"
	KindFileBased           VariantKind = "file_based"
)

// InputMode controls how the learner answers a question.
type InputMode string

const (
	InputButtons    InputMode = "buttons"
	InputTyped      InputMode = "typed"
	InputSelfAssess InputMode = "self_assess"
)

// ParseInputMode accepts the canonical names plus a few short aliases.
func ParseInputMode(raw string) (InputMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buttons", "button", "b":
		return InputButtons, nil
	case "typed", "input", "type", "t":
		return InputTyped, nil
	case "self_assess", "self-assess", "self", "s":
		return InputSelfAssess, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInputMode, raw)
}

// Answer is either a number or free text.
type Answer struct {
	Numeric bool
	Number  int
	Text    string
}

// NumberAnswer builds a numeric answer.
func NumberAnswer(n int) Answer {
	return Answer{Numeric: true, Number: n, Text: strconv.Itoa(n)}
}

// TextAnswer builds a text answer.
func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

func (a Answer) String() string {
	if a.Numeric {
		return strconv.Itoa(a.Number)
	}
	return a.Text
}

// Matches compares raw input with the answer: numerically when both sides are
// numbers, otherwise as case-insensitive trimmed text.
func (a Answer) Matches(raw string) bool {
	in := strings.TrimSpace(raw)
	if n, ok := parseNumber(in); ok {
		if a.Numeric {
			return float64(a.Number) == n
		}
		if m, ok := parseNumber(strings.TrimSpace(a.Text)); ok {
			return m == n
		}
	}
	return strings.EqualFold(in, strings.TrimSpace(a.String()))
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Question is one generated round. It is not mutated after it is presented.
type Question struct {
	OperandA         int
	OperandB         int
	Expected         Answer
	Prompt           string
	PromptWithAnswer string
	// Options are supplied by quiz files; arithmetic questions leave this empty.
	Options []string
	// Accepted lists alternative correct answers from quiz files.
	Accepted []string
}

// IsCorrect reports whether raw matches the expected answer or any accepted alternative.
func (q Question) IsCorrect(raw string) bool {
	if q.Expected.Matches(raw) {
		return true
	}
	for _, alt := range q.Accepted {
		if TextAnswer(alt).Matches(raw) {
			return true
		}
	}
	return false
}

// AnswerOption is one selectable answer in buttons mode.
type AnswerOption struct {
	Value     Answer `json:"value"`
	IsCorrect bool   `json:"isCorrect"`
}

// ScoreRecord is one persisted quiz result.
type ScoreRecord struct {
	ID             int64     `json:"id"`
	QuizType       string    `json:"quizType"`
	PlayerName     string    `json:"playerName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	Timestamp      time.Time `json:"timestamp"`
}

// Percentage returns 100*score/total, or 0 when total is 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// ScoreStatistics aggregates score records. Empty sets yield zeros.
type ScoreStatistics struct {
	TotalQuizzes        int     `json:"totalQuizzes"`
	AvgPercentage       float64 `json:"avgPercentage"`
	MaxPercentage       float64 `json:"maxPercentage"`
	MinPercentage       float64 `json:"minPercentage"`
	AvgScore            float64 `json:"avgScore"`
	TotalCorrectAnswers int     `json:"totalCorrectAnswers"`
	TotalQuestionsAsked int     `json:"totalQuestionsAsked"`
}

// User is a learner that scores are tagged with.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Anonymous returns the reserved default user.
func Anonymous() User {
	return User{ID: AnonymousUserID, Username: "anonymous", DisplayName: AnonymousName}
}

// QuizEntry is one question of a quiz file.
type QuizEntry struct {
	Question       string   `json:"question" yaml:"question" validate:"required"`
	Answer         string   `json:"answer" yaml:"answer" validate:"required"`
	Options        []string `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,dive,required"`
	CorrectAnswers []string `json:"correct_answers,omitempty" yaml:"correct_answers,omitempty" validate:"omitempty,dive,required"`
}

// QuizDocument is a loaded quiz file. When LoadErr is set, Entries holds a
// single sentinel question describing the error.
type QuizDocument struct {
	Path      string
	Title     string
	InputMode InputMode
	Entries   []QuizEntry
	Invalid   []string
	LoadErr   error
}
