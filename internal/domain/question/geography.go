package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/trainer/internal/domain/model"
)

// Geocoder resolves a free-form place query to a formatted address.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (string, error)
}

const (
	geographyPrompt = "Was ist die Hauptstadt von Deutschland?"
	geographyQuery  = "Berlin"
)

// GeographyStrategy asks for Germany's capital. The expected answer is the
// geocoder's full address for Berlin, not the bare city name.
type GeographyStrategy struct {
	geocoder Geocoder
}

// NewGeography returns the geography strategy.
func NewGeography(g Geocoder) *GeographyStrategy {
	return &GeographyStrategy{geocoder: g}
}

// Generate implements Strategy.
func (s *GeographyStrategy) Generate(ctx context.Context) (model.Question, error) {
	const op = "question.geography"

	addr, err := s.geocoder.Geocode(ctx, geographyQuery)
	if err != nil {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, err)
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return model.Question{}, model.WrapKind(op, model.ErrGenerationUnavailable, fmt.Errorf("no result for %s", geographyQuery))
	}

	return model.Question{
		Domain: model.DomainGeography,
		Prompt: geographyPrompt,
		Answer: model.TextAnswer(addr),
	}, nil
}
