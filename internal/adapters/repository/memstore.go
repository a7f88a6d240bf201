package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/scoring"
)

// MemoryStore is a process-local ledger. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []model.AnswerEvent
	failOn error
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailWith makes every following call fail with err. A nil err restores
// normal operation.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = err
}

func (m *MemoryStore) Append(_ context.Context, ev model.AnswerEvent) (model.AnswerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return model.AnswerEvent{}, model.WrapKind("repository.append", model.ErrPersistence, m.failOn)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ev.Timestamp = ev.Timestamp.UTC()
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *MemoryStore) Tally(_ context.Context) (model.Tally, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failOn != nil {
		return model.Tally{}, model.WrapKind("repository.tally", model.ErrPersistence, m.failOn)
	}
	return scoring.TallyEvents(m.events), nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]model.AnswerEvent, error) {
	if limit <= 0 {
		return nil, model.NewKind("repository.recent", ErrInvalidLimit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failOn != nil {
		return nil, model.WrapKind("repository.recent", model.ErrPersistence, m.failOn)
	}
	out := make([]model.AnswerEvent, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failOn != nil {
		return model.WrapKind("repository.ping", model.ErrPersistence, m.failOn)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
