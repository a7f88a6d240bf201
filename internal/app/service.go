// Package service orchestrates the trainer: presenting questions, grading
// submissions against the session contract and summarizing the ledger.
package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/okian/trainer/internal/adapters/repository"
	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/dedupe"
	"github.com/okian/trainer/internal/domain/distractor"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/question"
	"github.com/okian/trainer/internal/domain/scoring"
	"github.com/okian/trainer/internal/domain/types"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

const (
	defaultGenerationAttempts = 3
	defaultDedupeSize         = 50000
	defaultRecentLimit        = 50
)

// QuestionSource produces questions per domain.
type QuestionSource interface {
	Generate(ctx context.Context, domain string) (model.Question, error)
}

// OptionSynthesizer builds the multiple-choice set around an answer.
type OptionSynthesizer interface {
	Synthesize(correct model.Answer) []types.Option
}

// Service implements the trainer use cases.
type Service struct {
	mu sync.RWMutex

	questions QuestionSource
	options   OptionSynthesizer
	ledger    repository.Store
	deduper   dedupe.Deduper
	scorer    scoring.Scorer

	generationAttempts int
	dedupeSize         int
	recentLimit        int

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQuestionSource sets the question registry.
func WithQuestionSource(q QuestionSource) Option {
	return func(s *Service) {
		if q != nil {
			s.questions = q
		}
	}
}

// WithSynthesizer sets the distractor synthesizer.
func WithSynthesizer(o OptionSynthesizer) Option {
	return func(s *Service) {
		if o != nil {
			s.options = o
		}
	}
}

// WithLedger sets the answer ledger.
func WithLedger(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.ledger = st
		}
	}
}

// WithDeduper sets the duplicate-submission tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithScorer sets the grading strategy.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithGenerationAttempts bounds retries for unavailable lookups.
func WithGenerationAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.generationAttempts = n
		}
	}
}

// WithDedupeSize sets the size of the default deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecentLimit sets how many events Recent returns.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Collaborators that are not supplied default to
// in-process implementations: an empty question registry, the strict scorer
// and an in-memory ledger.
func New(opts ...Option) *Service {
	s := &Service{
		generationAttempts: defaultGenerationAttempts,
		dedupeSize:         defaultDedupeSize,
		recentLimit:        defaultRecentLimit,
		now:                time.Now,
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.questions == nil {
		s.questions = question.NewRegistry(question.WithLogger(s.logger))
	}
	if s.options == nil {
		s.options = distractor.New()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewStrictScorer()
	}
	if s.ledger == nil {
		s.ledger = repository.NewMemoryStore()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	return s
}

// Start checks that the ledger is reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := s.ledger.Ping(ctx); err != nil {
		return err
	}
	s.started = true
	s.logger.Info(ctx, "trainer service started",
		logger.Int("generationAttempts", s.generationAttempts),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the ledger.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if err := s.ledger.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing ledger failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "trainer service stopped")
}

// Started reports whether Start succeeded and Stop was not called since.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Present generates a question for domain with its four options. An unknown
// domain yields the placeholder, not an error. Unavailable lookups are
// retried before ErrGenerationUnavailable is returned.
func (s *Service) Present(ctx context.Context, domain string, c contract.Contract) (types.Presentation, error) {
	q, placeholder, err := s.generate(ctx, domain)
	if err != nil {
		return types.Presentation{}, err
	}
	return types.Presentation{
		QuestionID:    q.ID,
		Domain:        domain,
		Prompt:        q.Prompt,
		Options:       s.options.Synthesize(q.Answer),
		CorrectAnswer: q.Answer.String(),
		AnswerKind:    string(q.Answer.Kind),
		TimeSeconds:   c.DifficultySeconds,
		Placeholder:   placeholder,
	}, nil
}

func (s *Service) generate(ctx context.Context, domain string) (model.Question, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= s.generationAttempts; attempt++ {
		q, err := s.questions.Generate(ctx, domain)
		switch {
		case err == nil:
			return q, false, nil
		case errors.Is(err, model.ErrUnknownDomain):
			s.logger.Debug(ctx, "unknown trainer, presenting placeholder", logger.String("domain", domain))
			return q, true, nil
		case !errors.Is(err, model.ErrGenerationUnavailable):
			return model.Question{}, false, err
		}
		lastErr = err
		s.logger.Warn(ctx, "question generation unavailable",
			logger.String("domain", domain),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return model.Question{}, false, lastErr
}

// Submit grades sub under the learner's current contract and appends the
// result to the ledger.
func (s *Service) Submit(ctx context.Context, sub types.Submission, who types.Learner) (types.Outcome, error) {
	out := types.Outcome{
		Domain:   sub.Domain,
		NextPath: "/trainer/" + url.PathEscape(sub.Domain),
	}

	if sub.QuestionID != "" && s.deduper.SeenAndRecord(ctx, sub.QuestionID) {
		s.logger.Debug(ctx, "duplicate submission acknowledged",
			logger.String("questionID", sub.QuestionID),
		)
		out.Duplicate = true
		return out, nil
	}

	res, err := s.scorer.Score(ctx, scoring.Input{
		Submitted: sub.Answer,
		Expected:  sub.CorrectAnswer,
		Contract:  who.Contract(),
	})
	if err != nil {
		s.forget(ctx, sub.QuestionID)
		return types.Outcome{}, err
	}

	ev, err := s.ledger.Append(ctx, model.AnswerEvent{
		UserID:    who.UserID(),
		Domain:    sub.Domain,
		Correct:   res.Correct,
		Points:    res.Points,
		Timestamp: s.now(),
	})
	if err != nil {
		s.forget(ctx, sub.QuestionID)
		s.logger.Error(ctx, "recording answer failed",
			logger.String("domain", sub.Domain),
			logger.Error(err),
		)
		return types.Outcome{}, err
	}

	metrics.RecordAnswer(sub.Domain, res.Correct, res.Points)
	out.EventID = ev.ID
	out.Correct = res.Correct
	out.Points = res.Points
	return out, nil
}

func (s *Service) forget(ctx context.Context, questionID string) {
	if questionID != "" {
		s.deduper.Unrecord(ctx, questionID)
	}
}

// Summary aggregates the whole ledger and converts points at the price of c.
func (s *Service) Summary(ctx context.Context, c contract.Contract) (types.Summary, error) {
	t, err := s.ledger.Tally(ctx)
	if err != nil {
		return types.Summary{}, err
	}
	return scoring.Summarize(t, c), nil
}

// Recent lists the latest ledger events, newest first.
func (s *Service) Recent(ctx context.Context) ([]model.AnswerEvent, error) {
	return s.ledger.Recent(ctx, s.recentLimit)
}

// SetContract validates c and stores it in h. On error h keeps its contract.
func (s *Service) SetContract(ctx context.Context, h types.ContractHolder, c contract.Contract) error {
	if err := h.SetContract(c); err != nil {
		metrics.RecordContractUpdate(false)
		s.logger.Info(ctx, "contract rejected", logger.Error(err))
		return err
	}
	metrics.RecordContractUpdate(true)
	s.logger.Info(ctx, "contract updated",
		logger.Int("difficulty", c.DifficultySeconds),
		logger.Int64("correctPoints", c.CorrectPoints),
		logger.Int64("incorrectPoints", c.IncorrectPoints),
		logger.Int64("pricePerPoint", c.PricePerPoint),
	)
	return nil
}

// Ready reports whether the ledger is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.ledger.Ping(ctx)
}
