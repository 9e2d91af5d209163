package seed_test

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/okian/autoleague/internal/adapters/seed"
	"github.com/okian/autoleague/internal/domain/match/matchtest"
	"github.com/okian/autoleague/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, column string, startRow int, values []string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, v := range values {
		cell, err := excelize.JoinCellName(column, startRow+i)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "ladder.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromWorkbook(t *testing.T) {
	Convey("Given a workbook with a ladder in column D", t, func() {
		path := buildWorkbook(t, "D", 4, []string{"SkyBot", "", "Botimus", " Kamikaze "})

		Convey("When the default range is read", func() {
			bots, err := seed.FromWorkbook(path, seed.DefaultRange)

			Convey("Then identifiers are normalized and blanks skipped", func() {
				So(err, ShouldBeNil)
				So(bots, ShouldResemble, []string{"skybot", "botimus", "kamikaze"})
			})
		})

		Convey("When the range is shorter than the ladder", func() {
			r := seed.DefaultRange
			r.Length = 1
			bots, err := seed.FromWorkbook(path, r)
			So(err, ShouldBeNil)
			So(bots, ShouldResemble, []string{"skybot"})
		})

		Convey("When a later week is requested", func() {
			r := seed.DefaultRange
			r.Week = 1
			cells, err := r.Cells()
			So(err, ShouldBeNil)
			So(cells, ShouldEqual, "F4:F48")

			_, err = seed.FromWorkbook(path, r)
			So(errors.Is(err, model.ErrLadderFormat), ShouldBeTrue)
		})
	})

	Convey("Given a workbook listing a bot twice", t, func() {
		path := buildWorkbook(t, "D", 4, []string{"a", "b", "A"})
		_, err := seed.FromWorkbook(path, seed.DefaultRange)

		Convey("Then the duplicate row is reported", func() {
			var lf *model.LadderFormatError
			So(errors.As(err, &lf), ShouldBeTrue)
			So(lf.Line, ShouldEqual, 6)
		})
	})

	Convey("Given a missing workbook", t, func() {
		_, err := seed.FromWorkbook(filepath.Join(t.TempDir(), "none.xlsx"), seed.DefaultRange)
		So(err, ShouldNotBeNil)
	})
}

func TestShuffled(t *testing.T) {
	Convey("Given a pool", t, func() {
		pool := matchtest.Pool("a", "b", "c", "d", "e")

		Convey("Then a seeded shuffle is a reproducible permutation", func() {
			first := seed.Shuffled(pool, rand.New(rand.NewPCG(3, 4)))
			second := seed.Shuffled(pool, rand.New(rand.NewPCG(3, 4)))
			So(first, ShouldResemble, second)
			So(first, ShouldHaveLength, 5)
			for _, n := range pool.Names() {
				So(first, ShouldContain, n)
			}
		})
	})
}
