// Package distractor synthesizes wrong multiple-choice options.
package distractor

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/types"
)

const (
	// OptionCount is the size of every answer set.
	OptionCount = 4

	maxOffset          = 10
	defaultMaxAttempts = 256
	letters            = "abcdefghijklmnopqrstuvwxyz"
)

// Rand is the randomness the synthesizer needs. *rand.Rand from math/rand/v2
// satisfies it; the default uses the concurrency-safe package functions.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(s *Synthesizer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithMaxAttempts caps random sampling before the deterministic fallback.
func WithMaxAttempts(n int) Option {
	return func(s *Synthesizer) {
		if n >= 0 {
			s.maxAttempts = n
		}
	}
}

// Synthesizer builds shuffled answer sets around a correct answer.
type Synthesizer struct {
	rng         Rand
	maxAttempts int
}

// New returns a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		rng:         globalRand{},
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns OptionCount unique options containing correct exactly
// once, in random order. Textual distractors are random lowercase strings of
// the same length; numeric ones are within ±10 of the correct value.
func (s *Synthesizer) Synthesize(correct model.Answer) []types.Option {
	key := correct.String()
	seen := map[string]struct{}{key: {}}
	options := make([]types.Option, 0, OptionCount)
	options = append(options, types.Option{Value: key, Correct: true})

	add := func(a model.Answer) {
		v := a.String()
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		options = append(options, types.Option{Value: v})
	}

	sample := s.sampler(correct)
	for attempt := 0; sample != nil && attempt < s.maxAttempts && len(options) < OptionCount; attempt++ {
		add(sample())
	}

	if len(options) < OptionCount {
		for _, a := range fallback(correct) {
			add(a)
			if len(options) == OptionCount {
				break
			}
		}
	}

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// sampler returns the random candidate generator for correct, or nil when
// random sampling cannot produce anything distinct.
func (s *Synthesizer) sampler(correct model.Answer) func() model.Answer {
	if correct.Kind == model.AnswerNumeric {
		return func() model.Answer {
			offset := s.rng.IntN(2*maxOffset+1) - maxOffset
			return model.NumericAnswer(model.Round2(correct.Number + float64(offset)))
		}
	}

	n := utf8.RuneCountInString(correct.Text)
	if n == 0 {
		return nil
	}
	return func() model.Answer {
		var b strings.Builder
		b.Grow(n)
		for i := 0; i < n; i++ {
			b.WriteByte(letters[s.rng.IntN(len(letters))])
		}
		return model.TextAnswer(b.String())
	}
}

// fallback lists deterministic candidates used once random sampling gives up.
func fallback(correct model.Answer) []model.Answer {
	var out []model.Answer
	if correct.Kind == model.AnswerNumeric {
		for k := maxOffset + 1; k <= maxOffset+OptionCount; k++ {
			out = append(out,
				model.NumericAnswer(model.Round2(correct.Number+float64(k))),
				model.NumericAnswer(model.Round2(correct.Number-float64(k))),
			)
		}
		return out
	}

	n := utf8.RuneCountInString(correct.Text)
	if n == 0 {
		// nothing has length zero except the answer itself
		n = 1
	}
	for _, r := range letters {
		out = append(out, model.TextAnswer(strings.Repeat(string(r), n)))
	}
	return out
}
