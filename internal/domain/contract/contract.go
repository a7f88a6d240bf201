// Package contract holds the supervising party's scoring terms.
package contract

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/trainer/internal/domain/model"
)

// Defaults applied when a session has no contract yet.
const (
	DefaultDifficultySeconds = 10
	DefaultCorrectPoints     = 10
	DefaultIncorrectPoints   = 5
	DefaultPricePerPoint     = 1
)

// Form field names used by the contract page.
const (
	FieldDifficulty      = "difficulty"
	FieldCorrectPoints   = "correct_points"
	FieldIncorrectPoints = "incorrect_points"
	FieldPricePerPoint   = "price_per_point"
)

// Contract is replaced as a whole, never field by field.
type Contract struct {
	DifficultySeconds int   `json:"difficulty" validate:"gt=0,lte=3600"`
	CorrectPoints     int64 `json:"correct_points" validate:"gte=0,lte=100000"`
	IncorrectPoints   int64 `json:"incorrect_points" validate:"gte=0,lte=100000"`
	// PricePerPoint is in cents per point.
	PricePerPoint int64 `json:"price_per_point" validate:"gte=0,lte=100000"`
}

// Default returns the contract every new session starts with.
func Default() Contract {
	return Contract{
		DifficultySeconds: DefaultDifficultySeconds,
		CorrectPoints:     DefaultCorrectPoints,
		IncorrectPoints:   DefaultIncorrectPoints,
		PricePerPoint:     DefaultPricePerPoint,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the contract bounds.
func (c Contract) Validate() error {
	const op = "contract.validate"
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return model.WrapKind(op, model.ErrValidation,
				fmt.Errorf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
		return model.WrapKind(op, model.ErrValidation, err)
	}
	return nil
}

// PointsFor returns the signed points delta for a graded answer.
func (c Contract) PointsFor(correct bool) int64 {
	if correct {
		return c.CorrectPoints
	}
	return -c.IncorrectPoints
}

// Parse reads a contract from submitted form values. Every field is required
// and must be an integer; the result is validated before it is returned.
func Parse(form url.Values) (Contract, error) {
	const op = "contract.parse"

	read := func(name string) (int64, error) {
		raw := strings.TrimSpace(form.Get(name))
		if raw == "" {
			return 0, model.WrapKind(op, model.ErrValidation, fmt.Errorf("missing %s", name))
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, model.WrapKind(op, model.ErrValidation, fmt.Errorf("%s must be an integer", name))
		}
		return v, nil
	}

	difficulty, err := read(FieldDifficulty)
	if err != nil {
		return Contract{}, err
	}
	correct, err := read(FieldCorrectPoints)
	if err != nil {
		return Contract{}, err
	}
	incorrect, err := read(FieldIncorrectPoints)
	if err != nil {
		return Contract{}, err
	}
	price, err := read(FieldPricePerPoint)
	if err != nil {
		return Contract{}, err
	}
	if difficulty > 1<<31-1 || difficulty < -1<<31 {
		return Contract{}, model.WrapKind(op, model.ErrValidation, fmt.Errorf("%s out of range", FieldDifficulty))
	}

	c := Contract{
		DifficultySeconds: int(difficulty),
		CorrectPoints:     correct,
		IncorrectPoints:   incorrect,
		PricePerPoint:     price,
	}
	if err := c.Validate(); err != nil {
		return Contract{}, err
	}
	return c, nil
}
