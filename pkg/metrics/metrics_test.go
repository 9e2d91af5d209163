package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("league"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors register under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.matchesExecuted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_league_matches_executed_total")
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "autoleague")
				So(m.subsystem, ShouldEqual, "ladder")
				So(len(m.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording match outcomes", func() {
			before := testutil.ToFloat64(globalManager.resultsCached)
			RecordResultCached()
			RecordResultCached()

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.resultsCached), ShouldEqual, before+2)
			})
		})

		Convey("When writing a ladder", func() {
			RecordLadderWrite(12)

			Convey("Then the size gauge follows", func() {
				So(testutil.ToFloat64(globalManager.ladderSize), ShouldEqual, 12)
			})
		})

		Convey("When the bubble cursor moves", func() {
			UpdateBubbleCursor(4)
			So(testutil.ToFloat64(globalManager.bubbleCursor), ShouldEqual, 4)
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordMatchExecuted(3.5)
				RecordResultCorrupt()
				RecordNoRecording()
				RecordBubbleSwap()
				RecordBubblePass()
				RecordEventCompleted("odd", 42)
				RecordHTTPRequest("/ladder", "GET", "200")
				RecordHTTPRequestDuration("/ladder", "GET", "200", 0.01)
				RecordErrorByComponent("league", "corrupt_result")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
