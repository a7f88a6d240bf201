package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithRefreshInterval(time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.questionsGenerated.WithLabelValues("math").Inc()

			Convey("Then metrics are registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_questions_generated_total"], ShouldBeTrue)
				So(m.refreshInterval, ShouldEqual, time.Second)
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "trainer")
				So(m.subsystem, ShouldEqual, "quiz")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When an answer is recorded", func() {
			before := testutil.ToFloat64(globalManager.answers.WithLabelValues("math", "correct"))
			earned := testutil.ToFloat64(globalManager.pointsAwarded.WithLabelValues("earned"))
			RecordAnswer("math", true, 10)

			Convey("Then the result and points are counted", func() {
				So(testutil.ToFloat64(globalManager.answers.WithLabelValues("math", "correct")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.pointsAwarded.WithLabelValues("earned")), ShouldEqual, earned+10)
			})
		})

		Convey("When a penalty is recorded", func() {
			deducted := testutil.ToFloat64(globalManager.pointsAwarded.WithLabelValues("deducted"))
			RecordAnswer("english", false, -5)
			So(testutil.ToFloat64(globalManager.pointsAwarded.WithLabelValues("deducted")), ShouldEqual, deducted+5)
		})

		Convey("When lookups are recorded", func() {
			failed := testutil.ToFloat64(globalManager.lookupResults.WithLabelValues("thesaurus", "error"))
			hits := testutil.ToFloat64(globalManager.lookupCache.WithLabelValues("thesaurus", "hit"))
			RecordLookup("thesaurus", false, 12.5)
			RecordLookupCache("thesaurus", true)

			So(testutil.ToFloat64(globalManager.lookupResults.WithLabelValues("thesaurus", "error")), ShouldEqual, failed+1)
			So(testutil.ToFloat64(globalManager.lookupCache.WithLabelValues("thesaurus", "hit")), ShouldEqual, hits+1)
		})

		Convey("When gauges are updated", func() {
			UpdateDedupeSize(42)
			UpdateSystemGoroutineCount(7)
			So(testutil.ToFloat64(globalManager.dedupeSize), ShouldEqual, 42)
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 7)
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				RecordQuestionGenerated("history")
				RecordGenerationFailure("history", "unavailable")
				RecordDuplicateSubmission()
				RecordLedgerLatency("append", 1.5)
				RecordLedgerError("tally")
				RecordContractUpdate(true)
				RecordContractUpdate(false)
				RecordHTTPRequest("/trainer/{domain}", "GET", "200")
				RecordHTTPRequestDuration("/trainer/{domain}", "GET", "200", 3.2)
				RecordErrorByEndpoint("/check_answer", "POST", "persistence")
				RecordErrorByType("persistence", "error")
				UpdateSystemMemoryUsage(1 << 20)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestCollectSystem(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then CollectSystem samples once and returns", func() {
			done := make(chan struct{})
			go func() {
				CollectSystem(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("CollectSystem did not return")
			}
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The custom registry is exposed", t, func() {
		So(GetRegistry(), ShouldEqual, customRegistry)
	})
}
