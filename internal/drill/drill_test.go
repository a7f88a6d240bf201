package drill

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/okian/trainer/internal/adapters/http/api"
	"github.com/okian/trainer/internal/adapters/repository"
	"github.com/okian/trainer/internal/adapters/session"
	service "github.com/okian/trainer/internal/app"
	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/question"
	"github.com/okian/trainer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type downEncyclopedia struct{}

func (downEncyclopedia) Summary(context.Context, string) (question.Page, error) {
	return question.Page{}, errors.New("upstream down")
}

func newTrainer() *httptest.Server {
	reg := question.NewRegistry()
	reg.Register(model.DomainMath, question.NewMath(nil))
	reg.Register(model.DomainBiology, question.Biology())
	reg.Register(model.DomainHistory, question.NewHistory(downEncyclopedia{}, nil))

	svc := service.New(
		service.WithQuestionSource(reg),
		service.WithLedger(repository.NewMemoryStore()),
		service.WithGenerationAttempts(1),
	)

	r := chi.NewRouter()
	r.Use(session.NewManager("drill-secret").Middleware)
	api.NewServer(svc).Register(context.Background(), r)
	return httptest.NewServer(r)
}

func drillConfig(url string) *Config {
	return &Config{
		BaseURL:  url,
		Learners: 4,
		Answers:  10,
		Accuracy: 0.5,
		Domains:  []string{"math", "biology", "astrology"},
		Contract: contract.Contract{DifficultySeconds: 10, CorrectPoints: 20, IncorrectPoints: 5, PricePerPoint: 2},
		Resend:   true,
		Timeout:  5 * time.Second,
		Seed:     42,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running trainer with an empty ledger", t, func() {
		srv := newTrainer()
		defer srv.Close()
		ctx := context.Background()

		Convey("When four learners answer ten questions each", func() {
			stats, err := Run(ctx, drillConfig(srv.URL), logger.Nop())

			Convey("Then the ledger moved by exactly their answers", func() {
				So(err, ShouldBeNil)
				So(stats.Correct+stats.Incorrect, ShouldEqual, int64(40))
				So(stats.Duplicates, ShouldEqual, int64(40))
				So(stats.Points, ShouldEqual, stats.Correct*20-stats.Incorrect*5)
				So(stats.RunID, ShouldNotBeEmpty)
			})
		})

		Convey("When a trainer cannot generate questions", func() {
			cfg := drillConfig(srv.URL)
			cfg.Domains = []string{"history"}
			cfg.Resend = false
			stats, err := Run(ctx, cfg, logger.Nop())

			Convey("Then the answers are skipped, not failed", func() {
				So(err, ShouldBeNil)
				So(stats.Unavailable, ShouldEqual, int64(40))
				So(stats.Correct+stats.Incorrect, ShouldEqual, int64(0))
			})
		})

		Convey("When every answer is correct", func() {
			cfg := drillConfig(srv.URL)
			cfg.Accuracy = 1
			stats, err := Run(ctx, cfg, logger.Nop())

			Convey("Then nothing is graded incorrect", func() {
				So(err, ShouldBeNil)
				So(stats.Incorrect, ShouldEqual, int64(0))
				So(stats.Points, ShouldEqual, int64(40*20))
			})
		})
	})
}

func TestRunRejectsBadConfig(t *testing.T) {
	Convey("Given invalid drill parameters", t, func() {
		cfg := drillConfig("http://127.0.0.1:1")

		Convey("Then zero learners are rejected", func() {
			cfg.Learners = 0
			_, err := Run(context.Background(), cfg, logger.Nop())
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("Then an accuracy above one is rejected", func() {
			cfg.Accuracy = 1.5
			So(errors.Is(cfg.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("Then an invalid contract is rejected", func() {
			cfg.Contract.DifficultySeconds = 0
			So(errors.Is(cfg.Validate(), ErrConfig), ShouldBeTrue)
		})

		Convey("Then an unreachable trainer is reported unhealthy", func() {
			_, err := Run(context.Background(), cfg, logger.Nop())
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a ledger before and after a drill", t, func() {
		before := Summary{TotalCorrect: 1, TotalIncorrect: 1, TotalPoints: 5}
		after := Summary{
			TotalCorrect: 4, TotalIncorrect: 3, TotalPoints: 25,
			TotalCurrency: decimal.RequireFromString("0.25"), PricePerPoint: 1,
		}
		st := &Stats{Correct: 3, Incorrect: 2, Points: 20}

		Convey("Then matching deltas verify", func() {
			So(Verify(before, after, st, 1), ShouldBeNil)
		})

		Convey("Then a missing answer is detected", func() {
			st.Correct = 4
			So(errors.Is(Verify(before, after, st, 1), ErrVerification), ShouldBeTrue)
		})

		Convey("Then a wrong currency is detected", func() {
			after.TotalCurrency = decimal.RequireFromString("0.20")
			So(errors.Is(Verify(before, after, st, 1), ErrVerification), ShouldBeTrue)
		})
	})
}

func TestChoose(t *testing.T) {
	Convey("Given a question with four options", t, func() {
		q := Question{CorrectAnswer: "45", Options: []Option{{Value: "45"}, {Value: "41"}, {Value: "50"}, {Value: "38"}}}

		So(choose(q, true), ShouldEqual, "45")
		So(choose(q, false), ShouldEqual, "41")
	})
}
