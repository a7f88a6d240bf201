package question_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/question"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given two operands", t, func() {
		Convey("Division rounds to two decimals", func() {
			v, err := question.Compute(23, 7, question.OpDiv)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 3.29)
			So(model.NumericAnswer(v).String(), ShouldEqual, "3.29")
		})

		Convey("Integer operators are exact", func() {
			v, _ := question.Compute(23, 7, question.OpAdd)
			So(v, ShouldEqual, 30.0)
			v, _ = question.Compute(23, 7, question.OpSub)
			So(v, ShouldEqual, 16.0)
			v, _ = question.Compute(23, 7, question.OpMul)
			So(v, ShouldEqual, 161.0)
		})

		Convey("Division by zero is an error", func() {
			_, err := question.Compute(23, 0, question.OpDiv)
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown operators are rejected", func() {
			_, err := question.Compute(1, 2, question.Operator("%"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMathStrategy(t *testing.T) {
	Convey("Given scripted draws", t, func() {
		// a = 10+13, b = 10+0, operator index 3 is division
		s := question.NewMath(&seqRand{draws: []int{13, 0, 3}})
		q, err := s.Generate(context.Background())

		Convey("Then the prompt and answer follow the draws", func() {
			So(err, ShouldBeNil)
			So(q.Prompt, ShouldEqual, "Was ist 23 / 10?")
			So(q.Answer.Kind, ShouldEqual, model.AnswerNumeric)
			So(q.Answer.String(), ShouldEqual, "2.3")
		})
	})

	Convey("Given random draws", t, func() {
		s := question.NewMath(nil)

		Convey("Then every prompt uses operands in range", func() {
			for i := 0; i < 200; i++ {
				q, err := s.Generate(context.Background())
				So(err, ShouldBeNil)
				var (
					a, b int
					op   string
				)
				n, scanErr := sscanPrompt(q.Prompt, &a, &op, &b)
				So(scanErr, ShouldBeNil)
				So(n, ShouldEqual, 3)
				So(a, ShouldBeBetweenOrEqual, 10, 99)
				So(b, ShouldBeBetweenOrEqual, 10, 99)
				want, _ := question.Compute(a, b, question.Operator(op))
				So(q.Answer.Number, ShouldEqual, want)
			}
		})
	})
}

func sscanPrompt(prompt string, a *int, op *string, b *int) (int, error) {
	return fmt.Sscanf(prompt, "Was ist %d %s %d?", a, op, b)
}
