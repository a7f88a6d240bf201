// Package question maps trainer domains to question-generation strategies.
package question

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

// Strategy produces one question for a single domain. Implementations hold no
// state besides their collaborators and must be safe for concurrent use.
type Strategy interface {
	Generate(ctx context.Context) (model.Question, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context) (model.Question, error)

// Generate calls f.
func (f StrategyFunc) Generate(ctx context.Context) (model.Question, error) { return f(ctx) }

// Rand is the randomness strategies draw from.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// pick returns a uniformly chosen element of items.
func pick[T any](rng Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator overrides how question IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Registry resolves a domain identifier to its strategy.
type Registry struct {
	strategies map[model.Domain]Strategy
	logger     logger.Logger
	newID      func() string
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		strategies: make(map[model.Domain]Strategy),
		logger:     logger.Nop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds s to domain, replacing any previous strategy.
func (r *Registry) Register(domain model.Domain, s Strategy) {
	r.strategies[domain] = s
}

// Supports reports whether domain has a strategy.
func (r *Registry) Supports(domain string) bool {
	_, ok := r.strategies[model.Domain(domain)]
	return ok
}

// Domains lists the registered domains, sorted.
func (r *Registry) Domains() []model.Domain {
	out := make([]model.Domain, 0, len(r.strategies))
	for d := range r.strategies {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generate produces a question for domain.
//
// For an unknown domain it returns the placeholder question together with
// ErrUnknownDomain; the placeholder is usable and callers are expected to
// present it. Lookup failures surface as ErrGenerationUnavailable. A panic
// inside a strategy is recovered and reported the same way.
func (r *Registry) Generate(ctx context.Context, domain string) (q model.Question, err error) {
	const op = "question.generate"

	s, ok := r.strategies[model.Domain(domain)]
	if !ok {
		q = model.Placeholder(domain)
		q.ID = r.newID()
		metrics.RecordGenerationFailure(domain, "unknown_domain")
		return q, model.NewKind(op, model.ErrUnknownDomain)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, "question strategy panicked",
				logger.String("domain", domain),
				logger.Any("panic", rec),
			)
			q = model.Question{}
			err = model.WrapKind(op, model.ErrGenerationUnavailable, fmt.Errorf("strategy panic: %v", rec))
		}
		if err != nil && !errors.Is(err, model.ErrUnknownDomain) {
			metrics.RecordGenerationFailure(domain, "unavailable")
		}
	}()

	q, err = s.Generate(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrGenerationUnavailable) {
			err = model.WrapKind(op, model.ErrGenerationUnavailable, err)
		}
		r.logger.Warn(ctx, "question generation failed",
			logger.String("domain", domain),
			logger.Error(err),
		)
		return model.Question{}, err
	}

	q.ID = r.newID()
	q.Domain = model.Domain(domain)
	metrics.RecordQuestionGenerated(domain)
	return q, nil
}
