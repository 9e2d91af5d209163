package simulate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	allstar = model.Competitor{Name: "psyonix_allstar", Version: model.BuiltinVersion, Skill: 1, Builtin: true}
	rookie  = model.Competitor{Name: "psyonix_rookie", Version: model.BuiltinVersion, Skill: 0, Builtin: true}
)

func TestExecutor(t *testing.T) {
	ctx := context.Background()
	req := match.Request{Blue: allstar, Orange: rookie, Map: "Farmstead", TeamSize: 1}

	Convey("Given a seeded simulator", t, func() {
		sim := simulate.NewExecutor(simulate.WithSeed(11))

		Convey("When the same match is played twice", func() {
			first, err := sim.Execute(ctx, req)
			So(err, ShouldBeNil)
			second, err := sim.Execute(ctx, req)
			So(err, ShouldBeNil)

			Convey("Then the outcomes are identical and decided", func() {
				So(second, ShouldResemble, first)
				So(first.Status, ShouldEqual, grading.Decided)
				So(first.Result.Blue, ShouldEqual, "psyonix_allstar")
				So(first.Result.Orange, ShouldEqual, "psyonix_rookie")
				So(first.Result.Validate(), ShouldBeNil)
			})
		})

		Convey("When a strong bot meets a weak one on many maps", func() {
			wins := 0
			for seed := range uint64(20) {
				out, err := simulate.NewExecutor(simulate.WithSeed(seed)).Execute(ctx, req)
				So(err, ShouldBeNil)
				if out.Result.Winner() == "psyonix_allstar" {
					wins++
				}
			}
			So(wins, ShouldBeGreaterThanOrEqualTo, 15)
		})
	})

	Convey("Given a simulator that never saves replays", t, func() {
		sim := simulate.NewExecutor(simulate.WithRecordingRate(0))
		out, err := sim.Execute(ctx, req)

		Convey("Then the match fails for lack of a recording but keeps its score", func() {
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, grading.FailedNoRecording)
			So(errors.Is(out.Warning(), model.ErrNoRecording), ShouldBeTrue)
			So(out.Result.Validate(), ShouldBeNil)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := simulate.NewExecutor().Execute(cctx, req)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given user bots", t, func() {
		a := model.Competitor{Name: "skybot", Version: "abc"}
		b := model.Competitor{Name: "skybot", Version: "def"}
		So(simulate.Strength(a), ShouldBeBetweenOrEqual, 0.3, 1.0)
		So(simulate.Strength(a), ShouldEqual, simulate.Strength(a))
		So(simulate.Strength(b), ShouldBeBetweenOrEqual, 0.3, 1.0)
	})
}
