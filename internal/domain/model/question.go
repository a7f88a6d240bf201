// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strconv"
)

// Domain identifies a trainer subject.
type Domain string

// Supported trainer domains.
const (
	DomainMath       Domain = "math"
	DomainEnglish    Domain = "english"
	DomainGerman     Domain = "german"
	DomainHistory    Domain = "history"
	DomainGeography  Domain = "geography"
	DomainBiology    Domain = "biology"
	DomainLiterature Domain = "literature"
)

// Domains lists every supported domain in presentation order.
func Domains() []Domain {
	return []Domain{
		DomainMath,
		DomainEnglish,
		DomainGerman,
		DomainHistory,
		DomainGeography,
		DomainBiology,
		DomainLiterature,
	}
}

// AnswerKind tells numeric answers from textual ones.
type AnswerKind string

const (
	AnswerNumeric AnswerKind = "numeric"
	AnswerText    AnswerKind = "text"
)

// Answer is the correct answer of a question, or one multiple-choice option.
type Answer struct {
	Kind   AnswerKind
	Text   string
	Number float64
}

// TextAnswer builds a textual answer.
func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }

// NumericAnswer builds a numeric answer.
func NumericAnswer(v float64) Answer { return Answer{Kind: AnswerNumeric, Number: v} }

// String renders the answer the way it is shown and submitted. Integral
// numbers drop the fraction, others keep the shortest exact form.
func (a Answer) String() string {
	if a.Kind != AnswerNumeric {
		return a.Text
	}
	if a.Number == math.Trunc(a.Number) && math.Abs(a.Number) < 1e15 {
		return strconv.FormatInt(int64(a.Number), 10)
	}
	return strconv.FormatFloat(a.Number, 'f', -1, 64)
}

// Question is generated per request and never persisted.
type Question struct {
	ID     string
	Domain Domain
	Prompt string
	Answer Answer
}

// Placeholder is presented for unknown trainer identifiers.
func Placeholder(domain string) Question {
	return Question{
		Domain: Domain(domain),
		Prompt: "Unbekannter Trainer",
		Answer: TextAnswer(""),
	}
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
