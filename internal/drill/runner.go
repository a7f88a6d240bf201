// Package drill simulates concurrent learners against a running trainer and
// verifies that the ledger moved by exactly what they earned.
package drill

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/trainer/pkg/logger"
)

type tally struct {
	correct, incorrect, points   atomic.Int64
	duplicates, unavailable, bad atomic.Int64
}

// Validate checks the drill parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: empty base url", ErrConfig)
	case c.Learners <= 0:
		return fmt.Errorf("%w: learners must be positive", ErrConfig)
	case c.Answers <= 0:
		return fmt.Errorf("%w: answers must be positive", ErrConfig)
	case c.Accuracy < 0 || c.Accuracy > 1:
		return fmt.Errorf("%w: accuracy must be within 0..1", ErrConfig)
	case len(c.Domains) == 0:
		return fmt.Errorf("%w: no domains", ErrConfig)
	}
	if err := c.Contract.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// Run executes a drill. The ledger must not receive other traffic while it
// runs, otherwise verification fails.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	log = log.With(logger.String("runID", stats.RunID))

	log.Info(ctx, "starting drill",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("learners", cfg.Learners),
		logger.Int("answers", cfg.Answers),
		logger.Float64("accuracy", cfg.Accuracy),
		logger.Any("domains", cfg.Domains),
	)

	observer, err := NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if err := observer.Health(ctx); err != nil {
		return nil, err
	}
	if err := observer.PutContract(ctx, cfg.Contract); err != nil {
		return nil, fmt.Errorf("failed to set contract: %w", err)
	}
	before, err := observer.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	var t tally
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Learners; i++ {
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		g.Go(func() error {
			return learn(gctx, cfg, i, rng, &t, log)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	after, err := observer.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	stats.Correct = t.correct.Load()
	stats.Incorrect = t.incorrect.Load()
	stats.Points = t.points.Load()
	stats.Duplicates = t.duplicates.Load()
	stats.Unavailable = t.unavailable.Load()
	stats.Failed = t.bad.Load()
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if err := Verify(before, after, stats, cfg.Contract.PricePerPoint); err != nil {
		return stats, err
	}
	Report(ctx, log, stats, after)
	return stats, nil
}

func learn(ctx context.Context, cfg *Config, id int, rng *rand.Rand, t *tally, log logger.Logger) error {
	c, err := NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return err
	}
	if err := c.PutContract(ctx, cfg.Contract); err != nil {
		return fmt.Errorf("learner %d: set contract: %w", id, err)
	}

	for n := 0; n < cfg.Answers; n++ {
		domain := cfg.Domains[(id+n)%len(cfg.Domains)]
		q, err := c.Question(ctx, domain)
		if errors.Is(err, ErrUnavailable) {
			t.unavailable.Add(1)
			continue
		}
		if err != nil {
			return fmt.Errorf("learner %d: %w", id, err)
		}

		wantCorrect := rng.Float64() < cfg.Accuracy
		a := Answer{
			QuestionID:    q.QuestionID,
			Answer:        choose(q, wantCorrect),
			CorrectAnswer: q.CorrectAnswer,
			TrainerType:   domain,
		}
		wantCorrect = a.Answer == q.CorrectAnswer

		out, err := c.Answer(ctx, a)
		if err != nil {
			return fmt.Errorf("learner %d: %w", id, err)
		}
		if out.Duplicate || out.Correct != wantCorrect {
			t.bad.Add(1)
			return fmt.Errorf("%w: learner %d got %+v for %q", ErrVerification, id, out, a.Answer)
		}
		if out.Correct {
			t.correct.Add(1)
		} else {
			t.incorrect.Add(1)
		}
		t.points.Add(out.Points)

		if cfg.Verbose {
			log.Debug(ctx, "answered",
				logger.Int("learner", id),
				logger.String("domain", domain),
				logger.Bool("correct", out.Correct),
				logger.Int64("points", out.Points),
			)
		}

		if cfg.Resend && q.QuestionID != "" {
			again, err := c.Answer(ctx, a)
			if err != nil {
				return fmt.Errorf("learner %d: resend: %w", id, err)
			}
			if !again.Duplicate {
				t.bad.Add(1)
				return fmt.Errorf("%w: resent question %s was graded twice", ErrVerification, q.QuestionID)
			}
			t.duplicates.Add(1)
		}
	}
	return nil
}

// choose returns the correct answer when correct is set, otherwise the
// first option that differs from it.
func choose(q Question, correct bool) string {
	if correct {
		return q.CorrectAnswer
	}
	for _, o := range q.Options {
		if o.Value != q.CorrectAnswer {
			return o.Value
		}
	}
	return q.CorrectAnswer
}
