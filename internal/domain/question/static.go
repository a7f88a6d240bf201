package question

import (
	"context"

	"github.com/okian/trainer/internal/domain/model"
)

// Static always asks the same question.
type Static struct {
	domain model.Domain
	prompt string
	answer string
}

// NewStatic returns a fixed-question strategy.
func NewStatic(domain model.Domain, prompt, answer string) *Static {
	return &Static{domain: domain, prompt: prompt, answer: answer}
}

// Biology is the fixed biology question.
func Biology() *Static {
	return NewStatic(model.DomainBiology, "Zu welcher Klasse gehört Homo sapiens?", "Säugetiere")
}

// Literature is the fixed literature question.
func Literature() *Static {
	return NewStatic(model.DomainLiterature, "Wer ist der Autor von 'Faust'?", "Johann Wolfgang von Goethe")
}

// Generate implements Strategy.
func (s *Static) Generate(context.Context) (model.Question, error) {
	return model.Question{
		Domain: s.domain,
		Prompt: s.prompt,
		Answer: model.TextAnswer(s.answer),
	}, nil
}
