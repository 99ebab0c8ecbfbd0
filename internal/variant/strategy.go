// Package variant generates quiz questions. Each quiz variant is a Strategy
// looked up by name in a Registry.
package variant

import (
	"math/rand"

	"mathdrills/internal/domain"
)

// Strategy produces questions for one quiz variant.
type Strategy interface {
	// Name is the quiz type stored with score records.
	Name() string
	Kind() domain.VariantKind
	DefaultTotal() int
	GenerateQuestion(rnd *rand.Rand) (domain.Question, error)
}

// Deck is implemented by strategies with a finite set of questions.
// Reset starts a new pass, e.g. on quiz restart.
type Deck interface {
	Len() int
	Reset(rnd *rand.Rand)
}

// ModePreference is implemented by strategies that suggest an input mode.
type ModePreference interface {
	PreferredMode() domain.InputMode
}

func between(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.Intn(hi-lo+1)
}
