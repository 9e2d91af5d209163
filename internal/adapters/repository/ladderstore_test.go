package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/autoleague/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileLadderStore(t *testing.T) {
	Convey("Given a ladder store in a temp dir", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store := NewFileLadderStore(filepath.Join(dir, "ladder.txt"))

		Convey("Then slot paths follow the seed name", func() {
			So(store.Location(0), ShouldEqual, filepath.Join(dir, "ladder.txt"))
			So(store.Location(3), ShouldEqual, filepath.Join(dir, "ladder_3.txt"))
		})

		Convey("When no ladder exists", func() {
			_, err := store.Latest(ctx)

			Convey("Then a ladder format error is reported", func() {
				So(errors.Is(err, model.ErrLadderFormat), ShouldBeTrue)
				_, err = store.Read(ctx, 0)
				So(errors.Is(err, model.ErrLadderFormat), ShouldBeTrue)
			})
		})

		Convey("When slots 0 and 1 are written", func() {
			So(store.Write(ctx, 0, []string{"a", "b", "c"}), ShouldBeNil)
			So(store.Write(ctx, 1, []string{"b", "a", "c"}), ShouldBeNil)

			Convey("Then the latest slot is 1 and both read back", func() {
				latest, err := store.Latest(ctx)
				So(err, ShouldBeNil)
				So(latest, ShouldEqual, 1)

				bots, err := store.Read(ctx, 1)
				So(err, ShouldBeNil)
				So(bots, ShouldResemble, []string{"b", "a", "c"})
				So(store.Exists(ctx, 2), ShouldBeFalse)
			})

			Convey("Then overwriting a slot leaves no temp files", func() {
				So(store.Write(ctx, 1, []string{"c", "b", "a"}), ShouldBeNil)
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
			})
		})

		Convey("When the ladder file holds mixed case", func() {
			So(os.WriteFile(store.Location(0), []byte("SkyBot\n\nATBA\n"), 0o600), ShouldBeNil)
			bots, err := store.Read(ctx, 0)
			So(err, ShouldBeNil)
			So(bots, ShouldResemble, []string{"skybot", "atba"})
		})

		Convey("When a negative slot is used", func() {
			So(errors.Is(store.Write(ctx, -1, nil), ErrInvalidSlot), ShouldBeTrue)
			_, err := store.Read(ctx, -1)
			So(errors.Is(err, ErrInvalidSlot), ShouldBeTrue)
		})
	})
}
