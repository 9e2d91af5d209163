package grading

import (
	"errors"
	"testing"

	"github.com/okian/autoleague/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGrader(t *testing.T) {
	score := model.MatchResult{Blue: "a", Orange: "b", BlueGoals: 2, OrangeGoals: 1}

	Convey("Given a fresh grader", t, func() {
		g := NewGrader()
		So(g.Outcome().Status, ShouldEqual, Pending)

		Convey("When the match is still running", func() {
			o := g.Observe(Tick{SecondsElapsed: 120})
			So(o.Done(), ShouldBeFalse)
		})

		Convey("When the match ends and a replay is saved", func() {
			g.Observe(Tick{SecondsElapsed: 300})
			o := g.Observe(Tick{SecondsElapsed: 302, MatchEnded: true, Score: score, ReplayID: "r1"})

			Convey("Then the result is decided", func() {
				So(o.Status, ShouldEqual, Decided)
				So(o.Result, ShouldResemble, score)
				So(o.Warning(), ShouldBeNil)
			})

			Convey("Then later ticks do not change the outcome", func() {
				o2 := g.Observe(Tick{SecondsElapsed: 400, MatchEnded: true})
				So(o2, ShouldResemble, o)
			})
		})

		Convey("When the match ends without a replay", func() {
			g.Observe(Tick{SecondsElapsed: 300})
			o := g.Observe(Tick{SecondsElapsed: 310, MatchEnded: true, Score: score})

			Convey("Then grading waits out the grace period", func() {
				So(o.Status, ShouldEqual, Pending)
				So(o.Result, ShouldResemble, score)
			})

			o = g.Observe(Tick{SecondsElapsed: 315.5, MatchEnded: true, Score: score})

			Convey("Then it fails for the recording but keeps the result", func() {
				So(o.Status, ShouldEqual, FailedNoRecording)
				So(errors.Is(o.Warning(), model.ErrNoRecording), ShouldBeTrue)
				So(o.Result.Winner(), ShouldEqual, "a")
			})
		})
	})

	Convey("Given a grader with no grace", t, func() {
		g := NewGrader(WithReplayGrace(0))
		g.Observe(Tick{SecondsElapsed: 10})
		So(g.Observe(Tick{SecondsElapsed: 10.1, MatchEnded: true, Score: score}).Status, ShouldEqual, FailedNoRecording)
	})

	Convey("Given status values", t, func() {
		So(Pending.String(), ShouldEqual, "pending")
		So(FailedNoRecording.String(), ShouldEqual, "failed_no_recording")
		So(Status(9).String(), ShouldEqual, "unknown")
	})
}
