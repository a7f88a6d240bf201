package question

import (
	"github.com/okian/trainer/internal/domain/model"
)

// Sources bundles the collaborators the default strategies need.
type Sources struct {
	Lexicon      Lexicon
	GermanWords  WordList
	Thesaurus    Thesaurus
	Encyclopedia Encyclopedia
	Geocoder     Geocoder
	// Rand defaults to the global source when nil.
	Rand Rand
}

// NewDefaultRegistry registers a strategy for every known domain.
func NewDefaultRegistry(src Sources, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Register(model.DomainMath, NewMath(src.Rand))
	r.Register(model.DomainEnglish, NewEnglishSynonyms(src.Lexicon, src.Rand))
	r.Register(model.DomainGerman, NewGermanSynonyms(src.GermanWords, src.Thesaurus, src.Rand, r.logger.Named("german")))
	r.Register(model.DomainHistory, NewHistory(src.Encyclopedia, src.Rand))
	r.Register(model.DomainGeography, NewGeography(src.Geocoder))
	r.Register(model.DomainBiology, Biology())
	r.Register(model.DomainLiterature, Literature())
	return r
}

