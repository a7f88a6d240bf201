package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/trainer/internal/domain/model"
)

// Operator is an arithmetic operator shown in math prompts.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

var operators = []Operator{OpAdd, OpSub, OpMul, OpDiv}

const (
	mathMinOperand = 10
	mathMaxOperand = 99
	// zero divisors are re-drawn at most this many times before falling back to 1
	maxDivisorDraws = 8
)

var errDivideByZero = errors.New("divide by zero")

// Compute evaluates a op b. Division is rounded to two decimals.
func Compute(a, b int, op Operator) (float64, error) {
	switch op {
	case OpAdd:
		return float64(a + b), nil
	case OpSub:
		return float64(a - b), nil
	case OpMul:
		return float64(a * b), nil
	case OpDiv:
		if b == 0 {
			return 0, errDivideByZero
		}
		return model.Round2(float64(a) / float64(b)), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", op)
	}
}

// MathPrompt renders the arithmetic prompt.
func MathPrompt(a, b int, op Operator) string {
	return fmt.Sprintf("Was ist %d %s %d?", a, op, b)
}

// MathStrategy draws two operands from [10,99] and one of + - * /.
type MathStrategy struct {
	rng      Rand
	min, max int
}

// NewMath returns the arithmetic strategy. A nil rng uses the global source.
func NewMath(rng Rand) *MathStrategy {
	if rng == nil {
		rng = globalRand{}
	}
	return &MathStrategy{rng: rng, min: mathMinOperand, max: mathMaxOperand}
}

func (m *MathStrategy) operand() int {
	return m.min + m.rng.IntN(m.max-m.min+1)
}

// Generate implements Strategy.
func (m *MathStrategy) Generate(_ context.Context) (model.Question, error) {
	a, b := m.operand(), m.operand()
	op := pick(m.rng, operators)

	if op == OpDiv {
		for i := 0; b == 0 && i < maxDivisorDraws; i++ {
			b = m.operand()
		}
		if b == 0 {
			b = 1
		}
	}

	v, err := Compute(a, b, op)
	if err != nil {
		return model.Question{}, err
	}
	return model.Question{
		Domain: model.DomainMath,
		Prompt: MathPrompt(a, b, op),
		Answer: model.NumericAnswer(v),
	}, nil
}
