package variant

import (
	"fmt"
	"math/rand"

	"mathdrills/internal/domain"
)

// Arithmetic is a two-operand drill assembled from an operand generator, an
// answer calculator and an operator symbol.
type Arithmetic struct {
	name   string
	kind   domain.VariantKind
	total  int
	symbol string
	draw   func(rnd *rand.Rand) (int, int)
	calc   func(a, b int) int
}

// NewArithmetic builds a custom drill. draw and calc must both be set for the
// variant to generate questions.
func NewArithmetic(name string, kind domain.VariantKind, total int, symbol string, draw func(*rand.Rand) (int, int), calc func(a, b int) int) *Arithmetic {
	return &Arithmetic{name: name, kind: kind, total: total, symbol: symbol, draw: draw, calc: calc}
}

func (v *Arithmetic) Name() string             { return v.name }
func (v *Arithmetic) Kind() domain.VariantKind { return v.kind }
func (v *Arithmetic) DefaultTotal() int        { return v.total }

// Operands draws the two numbers for a round.
func (v *Arithmetic) Operands(rnd *rand.Rand) (int, int) {
	return v.draw(rnd)
}

// CalculateAnswer applies the variant's operation.
func (v *Arithmetic) CalculateAnswer(a, b int) int {
	return v.calc(a, b)
}

// FormatPrompt renders the question, e.g. "7 + 4 = ?".
func (v *Arithmetic) FormatPrompt(a, b int) string {
	return fmt.Sprintf("%d %s %d = ?", a, v.symbol, b)
}

// FormatPromptWithAnswer renders the solved equation.
func (v *Arithmetic) FormatPromptWithAnswer(a, b, answer int) string {
	return fmt.Sprintf("%d %s %d = %d", a, v.symbol, b, answer)
}

func (v *Arithmetic) GenerateQuestion(rnd *rand.Rand) (domain.Question, error) {
	if v.draw == nil || v.calc == nil {
		return domain.Question{}, fmt.Errorf("%w: %s", domain.ErrNotImplemented, v.name)
	}
	a, b := v.Operands(rnd)
	answer := v.CalculateAnswer(a, b)
	return domain.Question{
		OperandA:         a,
		OperandB:         b,
		Expected:         domain.NumberAnswer(answer),
		Prompt:           v.FormatPrompt(a, b),
		PromptWithAnswer: v.FormatPromptWithAnswer(a, b, answer),
	}, nil
}

// Addition draws a, b in [1,10] with a+b >= 10.
func Addition() *Arithmetic {
	return NewArithmetic("AdditionQuiz", domain.KindAddition, 20, "+",
		func(rnd *rand.Rand) (int, int) {
			for {
				a, b := between(rnd, 1, 10), between(rnd, 1, 10)
				if a+b >= 10 {
					return a, b
				}
			}
		},
		func(a, b int) int { return a + b },
	)
}

// Multiplication draws a, b in [1,10].
func Multiplication() *Arithmetic {
	return NewArithmetic("MultiplicationQuiz", domain.KindMultiplication, 20, "×",
		func(rnd *rand.Rand) (int, int) {
			return between(rnd, 1, 10), between(rnd, 1, 10)
		},
		func(a, b int) int { return a * b },
	)
}

// SmallMultiplication draws a, b in [2,5].
func SmallMultiplication() *Arithmetic {
	return NewArithmetic("SmallMultiplicationQuiz", domain.KindSmallMultiplication, 15, "×",
		func(rnd *rand.Rand) (int, int) {
			return between(rnd, 2, 5), between(rnd, 2, 5)
		},
		func(a, b int) int { return a * b },
	)
}

// Subtraction draws a in [10,20] and b in [1,a-1].
func Subtraction() *Arithmetic {
	return NewArithmetic("SubtractionQuiz", domain.KindSubtraction, 15, "-",
		func(rnd *rand.Rand) (int, int) {
			a := between(rnd, 10, 20)
			return a, between(rnd, 1, a-1)
		},
		func(a, b int) int { return a - b },
	)
}

// SubtractionTeens draws a in [10,20] and b in [1,9].
func SubtractionTeens() *Arithmetic {
	return NewArithmetic("SubtractionTeensQuiz", domain.KindSubtraction, 15, "-",
		func(rnd *rand.Rand) (int, int) {
			return between(rnd, 10, 20), between(rnd, 1, 9)
		},
		func(a, b int) int { return a - b },
	)
}

// Division draws the quotient and divisor first so the dividend always divides evenly.
func Division() *Arithmetic {
	return NewArithmetic("DivisionQuiz", domain.KindDivision, 20, "÷",
		func(rnd *rand.Rand) (int, int) {
			quotient := between(rnd, 1, 10)
			divisor := between(rnd, 2, 10)
			return quotient * divisor, divisor
		},
		func(a, b int) int { return a / b },
	)
}
