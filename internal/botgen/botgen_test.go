package botgen_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/okian/autoleague/internal/adapters/competitors"
	"github.com/okian/autoleague/internal/botgen"
	"github.com/okian/autoleague/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("Names are reproducible and usable as ladder identifiers", func() {
			a, b := botgen.New(botgen.WithSeed(11)), botgen.New(botgen.WithSeed(11))
			for range 10 {
				n := a.Name()
				So(n, ShouldEqual, b.Name())
				So(validName.MatchString(n), ShouldBeTrue)
			}
		})

		Convey("Generated bots are discovered by the scanner", func() {
			names, err := botgen.New(botgen.WithSeed(3)).Generate(ctx, dir, 4)
			So(err, ShouldBeNil)
			So(names, ShouldHaveLength, 4)

			pool, err := competitors.NewScanner(dir).Scan(ctx)
			So(err, ShouldBeNil)
			So(pool.Len(), ShouldEqual, 4)
			for _, n := range names {
				c, err := pool.Lookup(n)
				So(err, ShouldBeNil)
				So(c.Version, ShouldNotBeEmpty)
				So(c.ConfigPath, ShouldEqual, filepath.Join(dir, n, n+".cfg"))
			}
		})

		Convey("Existing directories are not overwritten", func() {
			first, err := botgen.New(botgen.WithSeed(5)).Generate(ctx, dir, 2)
			So(err, ShouldBeNil)
			second, err := botgen.New(botgen.WithSeed(5)).Generate(ctx, dir, 2)
			So(err, ShouldBeNil)
			for _, n := range second {
				So(first, ShouldNotContain, n)
			}
			entries, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 4)
		})

		Convey("A non-positive count is rejected", func() {
			_, err := botgen.New().Generate(ctx, dir, 0)
			So(errors.Is(err, botgen.ErrInvalidCount), ShouldBeTrue)
		})
	})
}
