package contract_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func form(difficulty, correct, incorrect, price string) url.Values {
	return url.Values{
		contract.FieldDifficulty:      {difficulty},
		contract.FieldCorrectPoints:   {correct},
		contract.FieldIncorrectPoints: {incorrect},
		contract.FieldPricePerPoint:   {price},
	}
}

func TestDefault(t *testing.T) {
	Convey("Given the default contract", t, func() {
		c := contract.Default()

		Convey("Then it carries the documented defaults", func() {
			So(c.DifficultySeconds, ShouldEqual, 10)
			So(c.CorrectPoints, ShouldEqual, 10)
			So(c.IncorrectPoints, ShouldEqual, 5)
			So(c.PricePerPoint, ShouldEqual, 1)
			So(c.Validate(), ShouldBeNil)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a contract form", t, func() {
		Convey("When all fields are integers", func() {
			c, err := contract.Parse(form("15", "20", "5", "2"))

			Convey("Then the same four values come back", func() {
				So(err, ShouldBeNil)
				So(c, ShouldResemble, contract.Contract{
					DifficultySeconds: 15,
					CorrectPoints:     20,
					IncorrectPoints:   5,
					PricePerPoint:     2,
				})
			})
		})

		Convey("When a field is not an integer", func() {
			_, err := contract.Parse(form("15", "twenty", "5", "2"))

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "correct_points")
			})
		})

		Convey("When a field is missing", func() {
			f := form("15", "20", "5", "2")
			f.Del(contract.FieldPricePerPoint)
			_, err := contract.Parse(f)

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "price_per_point")
			})
		})

		Convey("When difficulty is zero", func() {
			_, err := contract.Parse(form("0", "20", "5", "2"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "DifficultySeconds")
			})
		})

		Convey("When a value is a decimal", func() {
			_, err := contract.Parse(form("10", "2.5", "5", "2"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When points exceed the cap", func() {
			_, err := contract.Parse(form("10", "100001", "5", "2"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestPointsFor(t *testing.T) {
	Convey("Given a contract with 10 correct and 5 incorrect points", t, func() {
		c := contract.Contract{DifficultySeconds: 10, CorrectPoints: 10, IncorrectPoints: 5, PricePerPoint: 1}

		So(c.PointsFor(true), ShouldEqual, 10)
		So(c.PointsFor(false), ShouldEqual, -5)
	})
}
