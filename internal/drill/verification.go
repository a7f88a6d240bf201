package drill

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/okian/trainer/pkg/logger"
)

const centsPerUnit = 100

// Verify checks that the ledger moved by exactly the drill's answers and that
// the currency matches the points at price (cents per point).
func Verify(before, after Summary, st *Stats, price int64) error {
	if got := after.TotalCorrect - before.TotalCorrect; got != st.Correct {
		return fmt.Errorf("%w: correct moved by %d, want %d", ErrVerification, got, st.Correct)
	}
	if got := after.TotalIncorrect - before.TotalIncorrect; got != st.Incorrect {
		return fmt.Errorf("%w: incorrect moved by %d, want %d", ErrVerification, got, st.Incorrect)
	}
	if got := after.TotalPoints - before.TotalPoints; got != st.Points {
		return fmt.Errorf("%w: points moved by %d, want %d", ErrVerification, got, st.Points)
	}
	if after.PricePerPoint != price {
		return fmt.Errorf("%w: summary priced at %d, want %d", ErrVerification, after.PricePerPoint, price)
	}
	want := decimal.NewFromInt(after.TotalPoints).
		Mul(decimal.NewFromInt(price)).
		Div(decimal.NewFromInt(centsPerUnit))
	if !after.TotalCurrency.Equal(want) {
		return fmt.Errorf("%w: currency %s, want %s", ErrVerification, after.TotalCurrency, want)
	}
	return nil
}

// Report logs the final statistics.
func Report(ctx context.Context, log logger.Logger, st *Stats, after Summary) {
	answered := st.Correct + st.Incorrect
	var rate float64
	if answered > 0 {
		rate = float64(st.Correct) / float64(answered) * 100
	}
	log.Info(ctx, "drill completed",
		logger.Int64("correct", st.Correct),
		logger.Int64("incorrect", st.Incorrect),
		logger.Float64("correctRate", rate),
		logger.Int64("points", st.Points),
		logger.Int64("duplicates", st.Duplicates),
		logger.Int64("unavailable", st.Unavailable),
		logger.Duration("duration", st.Duration),
		logger.Int64("ledgerPoints", after.TotalPoints),
		logger.String("ledgerCurrency", after.TotalCurrency.StringFixed(2)),
	)
}
