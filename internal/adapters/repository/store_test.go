package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/trainer/internal/adapters/repository"
	"github.com/okian/trainer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sqliteStore(t *testing.T) repository.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(5000)"
	s, err := repository.Open(context.Background(), repository.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func event(domain string, correct bool, points int64) model.AnswerEvent {
	return model.AnswerEvent{
		UserID:    model.AnonymousUserID,
		Domain:    domain,
		Correct:   correct,
		Points:    points,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
	}
}

func TestLedger(t *testing.T) {
	stores := map[string]func(*testing.T) repository.Store{
		"memory": func(*testing.T) repository.Store { return repository.NewMemoryStore() },
		"sqlite": sqliteStore,
	}

	for name, mk := range stores {
		Convey("Given an empty "+name+" ledger", t, func() {
			ctx := context.Background()
			s := mk(t)

			Convey("Then the tally is zero", func() {
				tally, err := s.Tally(ctx)
				So(err, ShouldBeNil)
				So(tally, ShouldResemble, model.Tally{})
				So(s.Ping(ctx), ShouldBeNil)
			})

			Convey("When three correct and two incorrect answers are appended", func() {
				var last model.AnswerEvent
				for i := 0; i < 3; i++ {
					ev, err := s.Append(ctx, event("math", true, 10))
					So(err, ShouldBeNil)
					last = ev
				}
				for i := 0; i < 2; i++ {
					ev, err := s.Append(ctx, event("english", false, -5))
					So(err, ShouldBeNil)
					last = ev
				}

				Convey("Then IDs increase and timestamps are UTC", func() {
					So(last.ID, ShouldEqual, 5)
					So(last.Timestamp.Location(), ShouldEqual, time.UTC)
					So(last.Timestamp.Hour(), ShouldEqual, 10)
				})

				Convey("Then the tally sums the history", func() {
					tally, err := s.Tally(ctx)
					So(err, ShouldBeNil)
					So(tally.Correct, ShouldEqual, 3)
					So(tally.Incorrect, ShouldEqual, 2)
					So(tally.Points, ShouldEqual, 20)
				})

				Convey("Then recent events come newest first", func() {
					recent, err := s.Recent(ctx, 2)
					So(err, ShouldBeNil)
					So(recent, ShouldHaveLength, 2)
					So(recent[0].ID, ShouldEqual, 5)
					So(recent[0].Domain, ShouldEqual, "english")
					So(recent[0].Correct, ShouldBeFalse)
					So(recent[0].Points, ShouldEqual, -5)
					So(recent[0].UserID, ShouldEqual, model.AnonymousUserID)
					So(recent[0].Timestamp.Equal(last.Timestamp), ShouldBeTrue)
					So(recent[1].ID, ShouldEqual, 4)
				})
			})

			Convey("When the limit is not positive", func() {
				_, err := s.Recent(ctx, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})

			Convey("When appends race", func() {
				var wg sync.WaitGroup
				for i := 0; i < 20; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, _ = s.Append(ctx, event("biology", true, 10))
					}()
				}
				wg.Wait()

				tally, err := s.Tally(ctx)
				So(err, ShouldBeNil)
				So(tally.Correct, ShouldEqual, 20)
				So(tally.Points, ShouldEqual, 200)
			})
		})
	}
}

func TestMemoryStoreFailure(t *testing.T) {
	Convey("Given a memory ledger that fails", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		s.FailWith(errors.New("disk full"))

		Convey("Then every call reports a persistence error", func() {
			_, err := s.Append(ctx, event("math", true, 10))
			So(errors.Is(err, model.ErrPersistence), ShouldBeTrue)
			_, err = s.Tally(ctx)
			So(errors.Is(err, model.ErrPersistence), ShouldBeTrue)
			So(errors.Is(s.Ping(ctx), model.ErrPersistence), ShouldBeTrue)
		})

		Convey("When the failure clears", func() {
			s.FailWith(nil)
			ev, err := s.Append(ctx, event("math", true, 10))
			So(err, ShouldBeNil)
			So(ev.ID, ShouldEqual, 1)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given driver names", t, func() {
		ctx := context.Background()

		Convey("The memory driver needs no DSN", func() {
			s, err := repository.New(ctx, repository.DriverMemory, "")
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, &repository.MemoryStore{})
		})

		Convey("An unknown driver is rejected", func() {
			_, err := repository.New(ctx, repository.Driver("oracle"), "")
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}
