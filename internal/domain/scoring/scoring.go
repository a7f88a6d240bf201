// Package scoring grades answers against a contract and turns ledger tallies
// into a payout summary.
package scoring

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/types"
)

// centsPerUnit converts cents to currency units.
const centsPerUnit = 100

// Input abstracts what is needed to grade one submission.
type Input struct {
	Submitted string
	Expected  string
	Contract  contract.Contract
}

// Result is a graded submission.
type Result struct {
	Correct bool
	Points  int64
}

// Scorer grades a submission. Implementations must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// StrictScorer grades by exact string equality. No trimming or case folding
// is applied: " Berlin" does not match "Berlin".
type StrictScorer struct{}

// NewStrictScorer returns the exact-match scorer.
func NewStrictScorer() *StrictScorer {
	return &StrictScorer{}
}

// Score grades in and derives the points delta from in.Contract.
func (s *StrictScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	correct := Grade(in.Submitted, in.Expected)
	return Result{
		Correct: correct,
		Points:  in.Contract.PointsFor(correct),
	}, nil
}

// Grade reports whether submitted equals expected, byte for byte.
func Grade(submitted, expected string) bool {
	return submitted == expected
}

// Summarize converts a tally into the payout view. The conversion uses the
// price of the contract passed in, i.e. the one active now, even though
// the points may have been earned under earlier contracts.
func Summarize(t model.Tally, c contract.Contract) types.Summary {
	currency := decimal.NewFromInt(t.Points).
		Mul(decimal.NewFromInt(c.PricePerPoint)).
		Div(decimal.NewFromInt(centsPerUnit))

	return types.Summary{
		TotalCorrect:   t.Correct,
		TotalIncorrect: t.Incorrect,
		TotalPoints:    t.Points,
		TotalCurrency:  currency,
		PricePerPoint:  c.PricePerPoint,
	}
}

// TallyEvents aggregates events by scanning them all.
func TallyEvents(events []model.AnswerEvent) model.Tally {
	var t model.Tally
	for _, e := range events {
		if e.Correct {
			t.Correct++
		} else {
			t.Incorrect++
		}
		t.Points += e.Points
	}
	return t
}
