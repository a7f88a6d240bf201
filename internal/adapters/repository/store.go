// Package repository persists the append-only answer ledger.
package repository

import (
	"context"

	"github.com/okian/trainer/internal/domain/model"
)

// Store is the answer ledger.
type Store interface {
	// Append persists ev and returns it with its assigned ID. Failures are
	// reported as model.ErrPersistence.
	Append(ctx context.Context, ev model.AnswerEvent) (model.AnswerEvent, error)

	// Tally aggregates the full history.
	Tally(ctx context.Context) (model.Tally, error)

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]model.AnswerEvent, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}
