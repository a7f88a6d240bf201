package drill

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/trainer/internal/domain/contract"
)

// Config holds configuration for a drill run.
type Config struct {
	BaseURL  string        // Base URL of the trainer
	Learners int           // Concurrent learners, each with its own session
	Answers  int           // Answers per learner
	Accuracy float64       // Share of answers given correctly, 0..1
	Domains  []string      // Trainers cycled through by every learner
	Contract contract.Contract
	Resend   bool          // Post every answer twice to exercise idempotency
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for answer choices; zero picks a random one
	Verbose  bool
}

// Question is the subset of GET /api/trainer/{domain} a learner needs.
type Question struct {
	QuestionID    string   `json:"question_id"`
	TrainerType   string   `json:"trainer_type"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Placeholder   bool     `json:"placeholder"`
}

// Option is one multiple-choice answer.
type Option struct {
	Value string `json:"value"`
}

// Answer mirrors the POST /api/answers body.
type Answer struct {
	QuestionID    string `json:"question_id"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	TrainerType   string `json:"trainer_type"`
}

// Outcome mirrors the POST /api/answers response.
type Outcome struct {
	EventID   int64 `json:"event_id"`
	Correct   bool  `json:"correct"`
	Points    int64 `json:"points_delta"`
	Duplicate bool  `json:"duplicate"`
}

// Summary mirrors GET /api/summary.
type Summary struct {
	TotalCorrect   int64           `json:"total_correct"`
	TotalIncorrect int64           `json:"total_incorrect"`
	TotalPoints    int64           `json:"total_points"`
	TotalCurrency  decimal.Decimal `json:"total_currency"`
	PricePerPoint  int64           `json:"price_per_point"`
}

// Stats holds drill statistics.
type Stats struct {
	RunID       string
	Correct     int64
	Incorrect   int64
	Points      int64
	Duplicates  int64
	Unavailable int64
	Failed      int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
