package runner_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/autoleague/internal/adapters/runner"
	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/match/matchtest"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func request() match.Request {
	return match.Request{
		Blue:     model.Competitor{Name: "skybot", ConfigPath: "/bots/sky/sky.cfg", Skill: 1},
		Orange:   model.Competitor{Name: "psyonix_pro", Skill: 0.5, Builtin: true},
		Map:      "Farmstead",
		TeamSize: 1,
	}
}

const result = `{"blue":"skybot","orange":"psyonix_pro","blue_goals":3,"orange_goals":1}`

func TestArgs(t *testing.T) {
	Convey("Given a pairing of a user bot and a built-in", t, func() {
		args := runner.Args(request())

		Convey("Then user bots pass their config and built-ins their skill", func() {
			So(args, ShouldResemble, []string{
				"--blue", "skybot", "--orange", "psyonix_pro", "--map", "Farmstead", "--team-size", "1",
				"--blue-config", "/bots/sky/sky.cfg", "--orange-skill", "0.5",
			})
		})
	})
}

func TestCommandExecutor(t *testing.T) {
	ctx := context.Background()

	Convey("Given no command", t, func() {
		_, err := runner.NewCommandExecutor(nil)
		So(errors.Is(err, runner.ErrEmptyCommand), ShouldBeTrue)
	})

	Convey("Given a command that prints a result", t, func() {
		e, err := runner.NewCommandExecutor([]string{"sh", "-c", "echo '" + result + "'"})
		So(err, ShouldBeNil)
		out, err := e.Execute(ctx, request())

		Convey("Then the match is decided", func() {
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, grading.Decided)
			So(out.Result.Winner(), ShouldEqual, "skybot")
		})
	})

	Convey("Given a command exiting with the no-recording code", t, func() {
		e, err := runner.NewCommandExecutor([]string{"sh", "-c", "echo '" + result + "'; exit 3"})
		So(err, ShouldBeNil)
		out, err := e.Execute(ctx, request())

		Convey("Then the result is kept with a warning", func() {
			So(err, ShouldBeNil)
			So(out.Status, ShouldEqual, grading.FailedNoRecording)
			So(errors.Is(out.Warning(), model.ErrNoRecording), ShouldBeTrue)
			So(out.Result.BlueGoals, ShouldEqual, 3)
		})
	})

	Convey("Given a command that fails", t, func() {
		e, err := runner.NewCommandExecutor([]string{"sh", "-c", "echo 'game crashed' >&2; exit 1"})
		So(err, ShouldBeNil)
		_, err = e.Execute(ctx, request())

		Convey("Then the error carries stderr", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "game crashed")
		})
	})

	Convey("Given a command printing garbage", t, func() {
		e, err := runner.NewCommandExecutor([]string{"sh", "-c", "echo nope"})
		So(err, ShouldBeNil)
		_, err = e.Execute(ctx, request())
		So(err, ShouldNotBeNil)
	})
}

func TestThrottled(t *testing.T) {
	Convey("Given a throttled executor", t, func() {
		inner := matchtest.New(nil)
		req := request()

		Convey("When the cooldown is zero", func() {
			th := runner.NewThrottled(inner, 0)
			for range 3 {
				_, err := th.Execute(context.Background(), req)
				So(err, ShouldBeNil)
			}
			So(inner.Calls(), ShouldEqual, 3)
		})

		Convey("When the context ends during the cooldown", func() {
			th := runner.NewThrottled(inner, time.Hour)
			_, err := th.Execute(context.Background(), req)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			_, err = th.Execute(ctx, req)

			Convey("Then the second match is not played", func() {
				So(err, ShouldNotBeNil)
				So(inner.Calls(), ShouldEqual, 1)
			})
		})
	})
}
