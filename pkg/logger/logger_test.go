package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWriter(t *testing.T) {
	Convey("Given a logger writing into a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with a named component and fields", func() {
			Named("league").Info(ctx, "match finished",
				String("blue", "skybot"),
				Int("blue_goals", 3),
				Bool("cached", false),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries the component and fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "component=league")
				So(out, ShouldContainSubstring, "blue=skybot")
				So(out, ShouldContainSubstring, "blue_goals=3")
				So(out, ShouldContainSubstring, "cached=false")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When fields are bound with With", func() {
			Get().With(String("run_id", "r-1")).Warn(ctx, "no recording")

			Convey("Then every record includes them", func() {
				So(buf.String(), ShouldContainSubstring, "run_id=r-1")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown")
			_ = SetLevelString("info")

			Convey("Then lower records are dropped", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestInitWithNilWriter(t *testing.T) {
	Convey("Given a nil writer", t, func() {
		So(InitWithWriter(nil), ShouldNotBeNil)
	})
}
