package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/trainer/internal/adapters/repository"
	"github.com/okian/trainer/internal/adapters/session"
	service "github.com/okian/trainer/internal/app"
	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/question"
	"github.com/okian/trainer/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// flakySource fails a fixed number of times before delegating.
type flakySource struct {
	failures int
	calls    int
	next     service.QuestionSource
	err      error
}

func (f *flakySource) Generate(ctx context.Context, domain string) (model.Question, error) {
	f.calls++
	if f.calls <= f.failures {
		return model.Question{}, f.err
	}
	return f.next.Generate(ctx, domain)
}

func registry() *question.Registry {
	r := question.NewRegistry(question.WithIDGenerator(func() string { return "q-1" }))
	r.Register(model.DomainBiology, question.Biology())
	r.Register(model.DomainMath, question.NewMath(nil))
	return r
}

func unavailable() error {
	return model.WrapKind("test", model.ErrGenerationUnavailable, errors.New("lookup down"))
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with default collaborators", t, func() {
		svc := service.New()

		Convey("When it is started and stopped", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Started(), ShouldBeTrue)
			svc.Stop()
			So(svc.Started(), ShouldBeFalse)
		})

		Convey("When the ledger is unreachable", func() {
			ledger := repository.NewMemoryStore()
			ledger.FailWith(errors.New("no db"))
			err := service.New(service.WithLedger(ledger)).Start(context.Background())
			So(errors.Is(err, model.ErrPersistence), ShouldBeTrue)
		})
	})
}

func TestService_Present(t *testing.T) {
	Convey("Given a service with a registry", t, func() {
		ctx := context.Background()
		c := contract.Default()
		c.DifficultySeconds = 25

		Convey("When a known domain is requested", func() {
			svc := service.New(service.WithQuestionSource(registry()))
			p, err := svc.Present(ctx, "biology", c)

			Convey("Then the question carries four options and the countdown hint", func() {
				So(err, ShouldBeNil)
				So(p.QuestionID, ShouldEqual, "q-1")
				So(p.Prompt, ShouldEqual, "Zu welcher Klasse gehört Homo sapiens?")
				So(p.CorrectAnswer, ShouldEqual, "Säugetiere")
				So(p.Options, ShouldHaveLength, 4)
				So(p.TimeSeconds, ShouldEqual, 25)
				So(p.Placeholder, ShouldBeFalse)

				correct := 0
				for _, o := range p.Options {
					if o.Value == p.CorrectAnswer {
						correct++
					}
				}
				So(correct, ShouldEqual, 1)
			})
		})

		Convey("When the domain is unknown", func() {
			svc := service.New(service.WithQuestionSource(registry()))
			p, err := svc.Present(ctx, "astronomy", c)

			Convey("Then the placeholder is presented without error", func() {
				So(err, ShouldBeNil)
				So(p.Placeholder, ShouldBeTrue)
				So(p.Prompt, ShouldEqual, "Unbekannter Trainer")
				So(p.CorrectAnswer, ShouldEqual, "")
				So(p.Options, ShouldHaveLength, 4)
			})
		})

		Convey("When the lookup fails once", func() {
			src := &flakySource{failures: 1, err: unavailable(), next: registry()}
			svc := service.New(service.WithQuestionSource(src), service.WithGenerationAttempts(3))
			p, err := svc.Present(ctx, "biology", c)

			Convey("Then the retry succeeds", func() {
				So(err, ShouldBeNil)
				So(src.calls, ShouldEqual, 2)
				So(p.CorrectAnswer, ShouldEqual, "Säugetiere")
			})
		})

		Convey("When the lookup keeps failing", func() {
			src := &flakySource{failures: 10, err: unavailable(), next: registry()}
			svc := service.New(service.WithQuestionSource(src), service.WithGenerationAttempts(3))
			_, err := svc.Present(ctx, "history", c)

			Convey("Then generation is reported unavailable after the attempts", func() {
				So(errors.Is(err, model.ErrGenerationUnavailable), ShouldBeTrue)
				So(src.calls, ShouldEqual, 3)
			})
		})

		Convey("When the failure is not retryable", func() {
			src := &flakySource{failures: 10, err: errors.New("bug"), next: registry()}
			svc := service.New(service.WithQuestionSource(src), service.WithGenerationAttempts(3))
			_, err := svc.Present(ctx, "history", c)
			So(err, ShouldNotBeNil)
			So(src.calls, ShouldEqual, 1)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a learner with the default contract", t, func() {
		ctx := context.Background()
		ledger := repository.NewMemoryStore()
		fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		svc := service.New(service.WithLedger(ledger), service.WithClock(func() time.Time { return fixed }))
		learner := session.New(model.AnonymousUserID)

		Convey("When the answer matches exactly", func() {
			out, err := svc.Submit(ctx, types.Submission{
				QuestionID: "q-1", Answer: "3.29", CorrectAnswer: "3.29", Domain: "math",
			}, learner)

			Convey("Then ten points are awarded and recorded", func() {
				So(err, ShouldBeNil)
				So(out.Correct, ShouldBeTrue)
				So(out.Points, ShouldEqual, 10)
				So(out.NextPath, ShouldEqual, "/trainer/math")
				So(out.EventID, ShouldEqual, 1)

				recent, _ := ledger.Recent(ctx, 1)
				So(recent[0].UserID, ShouldEqual, model.AnonymousUserID)
				So(recent[0].Domain, ShouldEqual, "math")
				So(recent[0].Timestamp.Equal(fixed), ShouldBeTrue)
			})

			Convey("And resubmitting the same question is acknowledged only", func() {
				out, err := svc.Submit(ctx, types.Submission{
					QuestionID: "q-1", Answer: "3.29", CorrectAnswer: "3.29", Domain: "math",
				}, learner)
				So(err, ShouldBeNil)
				So(out.Duplicate, ShouldBeTrue)
				tally, _ := ledger.Tally(ctx)
				So(tally.Events(), ShouldEqual, 1)
			})
		})

		Convey("When the answer differs only in case", func() {
			out, err := svc.Submit(ctx, types.Submission{
				Answer: "berlin", CorrectAnswer: "Berlin", Domain: "geography",
			}, learner)

			Convey("Then five points are deducted", func() {
				So(err, ShouldBeNil)
				So(out.Correct, ShouldBeFalse)
				So(out.Points, ShouldEqual, -5)
			})
		})

		Convey("When the ledger is down", func() {
			ledger.FailWith(errors.New("disk full"))
			sub := types.Submission{QuestionID: "q-9", Answer: "a", CorrectAnswer: "a", Domain: "literature"}
			_, err := svc.Submit(ctx, sub, learner)

			Convey("Then the persistence error surfaces and the question can be retried", func() {
				So(errors.Is(err, model.ErrPersistence), ShouldBeTrue)
				ledger.FailWith(nil)
				out, err := svc.Submit(ctx, sub, learner)
				So(err, ShouldBeNil)
				So(out.Duplicate, ShouldBeFalse)
				So(out.Correct, ShouldBeTrue)
			})
		})

		Convey("When the domain needs escaping", func() {
			out, _ := svc.Submit(ctx, types.Submission{Answer: "x", CorrectAnswer: "y", Domain: "a b"}, learner)
			So(out.NextPath, ShouldEqual, "/trainer/a%20b")
		})
	})
}

func TestService_Summary(t *testing.T) {
	Convey("Given three correct and two incorrect answers", t, func() {
		ctx := context.Background()
		svc := service.New()
		learner := session.New(model.AnonymousUserID)
		for i := 0; i < 3; i++ {
			_, err := svc.Submit(ctx, types.Submission{Answer: "a", CorrectAnswer: "a", Domain: "math"}, learner)
			So(err, ShouldBeNil)
		}
		for i := 0; i < 2; i++ {
			_, err := svc.Submit(ctx, types.Submission{Answer: "a", CorrectAnswer: "b", Domain: "math"}, learner)
			So(err, ShouldBeNil)
		}

		Convey("When summarized at one cent per point", func() {
			sum, err := svc.Summary(ctx, contract.Default())

			Convey("Then 20 points are worth 0.20", func() {
				So(err, ShouldBeNil)
				So(sum.TotalCorrect, ShouldEqual, 3)
				So(sum.TotalIncorrect, ShouldEqual, 2)
				So(sum.TotalPoints, ShouldEqual, 20)
				So(sum.TotalCurrency.StringFixed(2), ShouldEqual, "0.20")
			})
		})

		Convey("When the live price changes", func() {
			c := contract.Default()
			c.PricePerPoint = 50
			sum, err := svc.Summary(ctx, c)

			Convey("Then all points convert at the new price", func() {
				So(err, ShouldBeNil)
				So(sum.TotalCurrency.StringFixed(2), ShouldEqual, "10.00")
			})
		})

		Convey("Then recent events are listed newest first", func() {
			recent, err := svc.Recent(ctx)
			So(err, ShouldBeNil)
			So(recent, ShouldHaveLength, 5)
			So(recent[0].Correct, ShouldBeFalse)
		})
	})
}

func TestService_SetContract(t *testing.T) {
	Convey("Given a session holding a contract", t, func() {
		ctx := context.Background()
		svc := service.New()
		sess := session.New(model.AnonymousUserID)
		next := contract.Contract{DifficultySeconds: 15, CorrectPoints: 20, IncorrectPoints: 5, PricePerPoint: 2}

		Convey("When a valid contract is applied", func() {
			So(svc.SetContract(ctx, sess, next), ShouldBeNil)

			Convey("Then later submissions use it", func() {
				out, err := svc.Submit(ctx, types.Submission{Answer: "a", CorrectAnswer: "a", Domain: "math"}, sess)
				So(err, ShouldBeNil)
				So(out.Points, ShouldEqual, 20)
			})
		})

		Convey("When an invalid contract is applied", func() {
			err := svc.SetContract(ctx, sess, contract.Contract{DifficultySeconds: -1})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(sess.Contract(), ShouldResemble, contract.Default())
		})
	})
}
