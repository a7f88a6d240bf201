package question

import (
	"context"
	"fmt"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

// Lexicon is a local word database grouping lemmas into synsets.
type Lexicon interface {
	Lemmas() []string
	// Synsets returns every synset containing word, each as an ordered lemma list.
	Synsets(word string) [][]string
}

// WordList supplies headwords to ask about.
type WordList interface {
	Words() []string
}

// Thesaurus resolves synonyms remotely. The result is the union of all
// synsets' terms.
type Thesaurus interface {
	Synonyms(ctx context.Context, word string) ([]string, error)
}

const (
	englishSynonymPrompt = "What is a synonym for %s?"
	germanSynonymPrompt  = "Was ist ein Synonym für %s?"
)

// EnglishSynonymStrategy asks for a synonym of a random lexicon lemma.
type EnglishSynonymStrategy struct {
	lexicon Lexicon
	rng     Rand
}

// NewEnglishSynonyms returns the english synonym strategy.
func NewEnglishSynonyms(lex Lexicon, rng Rand) *EnglishSynonymStrategy {
	if rng == nil {
		rng = globalRand{}
	}
	return &EnglishSynonymStrategy{lexicon: lex, rng: rng}
}

// Generate implements Strategy.
func (s *EnglishSynonymStrategy) Generate(ctx context.Context) (model.Question, error) {
	const op = "question.english"
	if err := ctx.Err(); err != nil {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, err)
	}

	lemmas := s.lexicon.Lemmas()
	if len(lemmas) == 0 {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, fmt.Errorf("empty lexicon"))
	}
	word := pick(s.rng, lemmas)

	answer := word
	if synsets := s.lexicon.Synsets(word); len(synsets) > 0 {
		if set := pick(s.rng, synsets); len(set) > 0 {
			answer = set[0]
		}
	}

	return model.Question{
		Domain: model.DomainEnglish,
		Prompt: fmt.Sprintf(englishSynonymPrompt, word),
		Answer: model.TextAnswer(answer),
	}, nil
}

// GermanSynonymStrategy asks for a synonym of a random German headword,
// resolved through a remote thesaurus. Lookup failures degrade to the
// headword itself.
type GermanSynonymStrategy struct {
	words     WordList
	thesaurus Thesaurus
	rng       Rand
	logger    logger.Logger
}

// NewGermanSynonyms returns the german synonym strategy.
func NewGermanSynonyms(words WordList, th Thesaurus, rng Rand, l logger.Logger) *GermanSynonymStrategy {
	if rng == nil {
		rng = globalRand{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &GermanSynonymStrategy{words: words, thesaurus: th, rng: rng, logger: l}
}

// Generate implements Strategy.
func (s *GermanSynonymStrategy) Generate(ctx context.Context) (model.Question, error) {
	const op = "question.german"

	words := s.words.Words()
	if len(words) == 0 {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, fmt.Errorf("empty word list"))
	}
	word := pick(s.rng, words)

	answer := word
	terms, err := s.thesaurus.Synonyms(ctx, word)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "thesaurus lookup failed, using headword",
			logger.String("word", word),
			logger.Error(err),
		)
		metrics.RecordGenerationFailure(string(model.DomainGerman), "degraded")
	case len(terms) == 0:
		s.logger.Debug(ctx, "thesaurus returned no terms", logger.String("word", word))
		metrics.RecordGenerationFailure(string(model.DomainGerman), "degraded")
	default:
		answer = pick(s.rng, terms)
	}

	return model.Question{
		Domain: model.DomainGerman,
		Prompt: fmt.Sprintf(germanSynonymPrompt, word),
		Answer: model.TextAnswer(answer),
	}, nil
}
