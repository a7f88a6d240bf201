package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/pkg/logger"
	"github.com/okian/trainer/pkg/metrics"
)

// Driver names a supported database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

const defaultSQLiteDSN = "file:trainer.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// SQLStore keeps the ledger in the results table.
type SQLStore struct {
	db     *sql.DB
	driver Driver
	logger logger.Logger
}

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open connects to the database and makes sure the schema exists.
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*SQLStore, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/trainer?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, model.WrapKind("repository.open", model.ErrPersistence, err)
	}
	if driver == DriverSQLite {
		// one writer keeps sqlite from returning SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, model.WrapKind("repository.open", model.ErrPersistence, err)
	}

	s := &SQLStore{db: db, driver: driver, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, model.WrapKind("repository.open", model.ErrPersistence, err)
	}
	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func observe(op string, start time.Time, err error) {
	metrics.RecordLedgerLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil {
		metrics.RecordLedgerError(op)
	}
}

func (s *SQLStore) Append(ctx context.Context, ev model.AnswerEvent) (_ model.AnswerEvent, err error) {
	const op = "repository.append"
	start := time.Now()
	defer func() { observe("append", start, err) }()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ev.Timestamp = ev.Timestamp.UTC()

	q := s.rebind(`INSERT INTO results (user_id, trainer, correct, points, "timestamp")
VALUES (?, ?, ?, ?, ?) RETURNING id`)
	row := s.db.QueryRowContext(ctx, q, ev.UserID, ev.Domain, ev.Correct, ev.Points, ev.Timestamp.UnixMilli())
	if err = row.Scan(&ev.ID); err != nil {
		s.logger.Error(ctx, "append answer event failed",
			logger.String("trainer", ev.Domain),
			logger.Error(err),
		)
		return model.AnswerEvent{}, model.WrapKind(op, model.ErrPersistence, err)
	}
	return ev, nil
}

func (s *SQLStore) Tally(ctx context.Context) (_ model.Tally, err error) {
	const op = "repository.tally"
	start := time.Now()
	defer func() { observe("tally", start, err) }()

	var t model.Tally
	err = s.db.QueryRowContext(ctx, `SELECT
  COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN correct THEN 0 ELSE 1 END), 0),
  COALESCE(SUM(points), 0)
FROM results`).Scan(&t.Correct, &t.Incorrect, &t.Points)
	if err != nil {
		return model.Tally{}, model.WrapKind(op, model.ErrPersistence, err)
	}
	return t, nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) (_ []model.AnswerEvent, err error) {
	const op = "repository.recent"
	if limit <= 0 {
		return nil, model.NewKind(op, ErrInvalidLimit)
	}
	start := time.Now()
	defer func() { observe("recent", start, err) }()

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, user_id, trainer, correct, points, "timestamp"
FROM results ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, model.WrapKind(op, model.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.AnswerEvent, 0, limit)
	for rows.Next() {
		var (
			ev model.AnswerEvent
			ms int64
		)
		if err = rows.Scan(&ev.ID, &ev.UserID, &ev.Domain, &ev.Correct, &ev.Points, &ms); err != nil {
			return nil, model.WrapKind(op, model.ErrPersistence, err)
		}
		ev.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, model.WrapKind(op, model.ErrPersistence, err)
	}
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return model.WrapKind("repository.ping", model.ErrPersistence, err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  trainer TEXT NOT NULL,
  correct BOOLEAN NOT NULL,
  points INTEGER NOT NULL,
  "timestamp" INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS results (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL,
  trainer TEXT NOT NULL,
  correct BOOLEAN NOT NULL,
  points BIGINT NOT NULL,
  "timestamp" BIGINT NOT NULL
);
`
