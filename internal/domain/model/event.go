package model

import "time"

// AnonymousUserID is recorded when no authenticated user is attached to the session.
const AnonymousUserID int64 = 1

// AnswerEvent is one immutable ledger row.
type AnswerEvent struct {
	ID        int64
	UserID    int64
	Domain    string
	Correct   bool
	Points    int64
	Timestamp time.Time
}

// Tally is the raw aggregate over all ledger events.
type Tally struct {
	Correct   int64
	Incorrect int64
	Points    int64
}

// Events returns the number of events the tally covers.
func (t Tally) Events() int64 { return t.Correct + t.Incorrect }
