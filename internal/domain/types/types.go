// Package types contains read shapes shared by the service and its adapters.
package types

import (
	"github.com/shopspring/decimal"

	"github.com/okian/trainer/internal/domain/contract"
)

// Summary is the supervising party's view of the ledger.
type Summary struct {
	TotalCorrect   int64           `json:"total_correct"`
	TotalIncorrect int64           `json:"total_incorrect"`
	TotalPoints    int64           `json:"total_points"`
	TotalCurrency  decimal.Decimal `json:"total_currency"`
	// PricePerPoint is the live price (in cents) the currency was computed with.
	PricePerPoint int64 `json:"price_per_point"`
}

// Option is one multiple-choice answer as presented to the learner.
type Option struct {
	Value   string `json:"value"`
	Correct bool   `json:"-"`
}

// Presentation is everything a page needs to show a question.
type Presentation struct {
	QuestionID    string   `json:"question_id"`
	Domain        string   `json:"domain"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	AnswerKind    string   `json:"answer_kind"`
	// TimeSeconds is a countdown hint for the page; nothing enforces it.
	TimeSeconds int `json:"time_seconds"`
	// Placeholder is set when the domain was not recognized.
	Placeholder bool `json:"placeholder"`
}

// Outcome reports a graded submission.
type Outcome struct {
	EventID   int64  `json:"event_id"`
	Correct   bool   `json:"correct"`
	Points    int64  `json:"points_delta"`
	Duplicate bool   `json:"duplicate"`
	NextPath  string `json:"next"`
	Domain    string `json:"trainer_type"`
}

// Submission is one answered question as posted by a page or API client.
type Submission struct {
	// QuestionID is optional; when set, a repeated submission is not graded twice.
	QuestionID    string `json:"question_id"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Domain        string `json:"trainer_type"`
}

// Learner is the per-session state a submission is graded under.
type Learner interface {
	UserID() int64
	Contract() contract.Contract
}

// ContractHolder stores the contract of a session.
type ContractHolder interface {
	Contract() contract.Contract
	SetContract(c contract.Contract) error
}
