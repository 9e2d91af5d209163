package league_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/autoleague/internal/adapters/repository"
	"github.com/okian/autoleague/internal/domain/dedupe"
	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/league"
	"github.com/okian/autoleague/internal/domain/match/matchtest"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

type fixture struct {
	ctx      context.Context
	ladders  *repository.FileLadderStore
	results  *repository.MemoryResultStore
	exec     *matchtest.Executor
	progress *league.Progressor
}

func newFixture(t *testing.T, seed []string, pool []string, opts ...league.Option) *fixture {
	f := &fixture{
		ctx:     context.Background(),
		ladders: repository.NewFileLadderStore(filepath.Join(t.TempDir(), "ladder.txt")),
		results: repository.NewMemoryResultStore(),
		exec:    matchtest.New(nil),
	}
	if err := f.ladders.Write(f.ctx, 0, seed); err != nil {
		t.Fatal(err)
	}
	resolver := dedupe.NewResolver(f.results, f.exec)
	f.progress = league.New(f.ladders, resolver, matchtest.Pool(pool...), opts...)
	return f
}

// descending scripts every earlier bot in order to beat every later one.
func (f *fixture) descending(order ...string) {
	for i := range order {
		for j := i + 1; j < len(order); j++ {
			f.exec.Beats(order[i], order[j])
		}
	}
}

func TestEligibleDivisions(t *testing.T) {
	Convey("Given division counts and parities", t, func() {
		So(league.EligibleDivisions(1, true), ShouldResemble, []int{0})
		So(league.EligibleDivisions(1, false), ShouldResemble, []int{0})
		So(league.EligibleDivisions(2, false), ShouldResemble, []int{0})
		So(league.EligibleDivisions(2, true), ShouldResemble, []int{1})
		So(league.EligibleDivisions(5, false), ShouldResemble, []int{0, 2, 4})
		So(league.EligibleDivisions(5, true), ShouldResemble, []int{1, 3})
		So(league.OddWeekFor(3), ShouldBeTrue)
		So(league.OddWeekFor(4), ShouldBeFalse)
	})
}

func TestRunEvent(t *testing.T) {
	bots := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	Convey("Given two divisions on an even week", t, func() {
		f := newFixture(t, bots, bots)
		f.descending("e", "a", "b", "c", "d")

		Convey("When the event runs", func() {
			report, err := f.progress.RunEvent(f.ctx, false)
			So(err, ShouldBeNil)

			Convey("Then only division 0 and its overlap bot played", func() {
				So(report.Divisions, ShouldHaveLength, 1)
				So(report.Divisions[0].Name, ShouldEqual, "quantum")
				So(f.exec.Calls(), ShouldEqual, 10)
				for _, p := range f.exec.Played() {
					So(p, ShouldNotContainSubstring, "f")
					So(p, ShouldNotContainSubstring, "g")
					So(p, ShouldNotContainSubstring, "h")
				}
			})

			Convey("Then the overlap bot is promoted and division 1 keeps f, g, h", func() {
				So(report.Event, ShouldEqual, 1)
				So(cmp.Diff([]string{"e", "a", "b", "c", "d", "f", "g", "h"}, report.Ladder), ShouldBeEmpty)

				written, err := f.ladders.Read(f.ctx, 1)
				So(err, ShouldBeNil)
				So(written, ShouldResemble, report.Ladder)
				So(written[5:], ShouldResemble, []string{"f", "g", "h"})
			})

			Convey("Then the input ladder is untouched", func() {
				seed, err := f.ladders.Read(f.ctx, 0)
				So(err, ShouldBeNil)
				So(seed, ShouldResemble, bots)
			})

			Convey("When the event is replayed after deleting its ladder", func() {
				So(os.Remove(f.ladders.Location(1)), ShouldBeNil)
				again, err := f.progress.RunEvent(f.ctx, false)

				Convey("Then every result comes from the store", func() {
					So(err, ShouldBeNil)
					So(f.exec.Calls(), ShouldEqual, 10)
					So(again.Divisions[0].Cached, ShouldEqual, 10)
					So(again.Ladder, ShouldResemble, report.Ladder)
				})
			})
		})
	})

	Convey("Given three divisions on an even week", t, func() {
		twelve := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
		f := newFixture(t, twelve, twelve)
		f.descending("l", "k", "j", "i", "e", "d", "c", "b", "a")

		report, err := f.progress.RunEvent(f.ctx, false)
		So(err, ShouldBeNil)

		Convey("Then divisions 2 and 0 play bottom first", func() {
			So(report.Divisions, ShouldHaveLength, 2)
			So(report.Divisions[0].Index, ShouldEqual, 2)
			So(report.Divisions[1].Index, ShouldEqual, 0)
			So(report.Ladder, ShouldResemble, []string{"e", "d", "c", "b", "a", "f", "g", "h", "l", "k", "j", "i"})
		})
	})

	Convey("Given a single small division", t, func() {
		f := newFixture(t, []string{"a", "b", "c"}, []string{"a", "b", "c"})
		f.descending("c", "b", "a")

		report, err := f.progress.RunEvent(f.ctx, true)
		So(err, ShouldBeNil)
		So(report.Ladder, ShouldResemble, []string{"c", "b", "a"})
		So(f.exec.Calls(), ShouldEqual, 3)
	})

	Convey("Given a competitor missing from the pool", t, func() {
		f := newFixture(t, []string{"a", "b", "ghost", "d"}, []string{"a", "b", "d"})

		_, err := f.progress.RunEvent(f.ctx, false)

		Convey("Then the event fails before any match is played", func() {
			var unknown *model.UnknownCompetitorError
			So(errors.As(err, &unknown), ShouldBeTrue)
			So(unknown.Name, ShouldEqual, "ghost")
			So(f.exec.Calls(), ShouldEqual, 0)
			So(f.ladders.Exists(f.ctx, 1), ShouldBeFalse)
		})
	})

	Convey("Given a corrupt stored result", t, func() {
		f := newFixture(t, bots, bots)
		key := types.NewPairKey(types.LeagueScope(1, "quantum"), "a", "b")
		f.results.PutRaw(key, []byte(`{"blue": "a", "orange"`))
		before, err := os.ReadFile(f.ladders.Location(0))
		So(err, ShouldBeNil)

		_, err = f.progress.RunEvent(f.ctx, false)

		Convey("Then the event aborts and no ladder changes", func() {
			So(errors.Is(err, model.ErrCorruptResult), ShouldBeTrue)
			after, readErr := os.ReadFile(f.ladders.Location(0))
			So(readErr, ShouldBeNil)
			So(after, ShouldResemble, before)
			So(f.ladders.Exists(f.ctx, 1), ShouldBeFalse)
		})
	})

	Convey("Given too few competitors", t, func() {
		f := newFixture(t, []string{"solo"}, []string{"solo"})
		_, err := f.progress.RunEvent(f.ctx, false)
		So(errors.Is(err, model.ErrInsufficientCompetitors), ShouldBeTrue)
	})

	Convey("Given a missing ladder", t, func() {
		f := newFixture(t, bots, bots)
		So(os.Remove(f.ladders.Location(0)), ShouldBeNil)
		_, err := f.progress.RunEvent(f.ctx, false)
		So(errors.Is(err, model.ErrLadderFormat), ShouldBeTrue)
	})
}

type admitDuringRound struct {
	progress *league.Progressor
	err      error
}

func (a *admitDuringRound) Publish(context.Context, types.LiveState) {
	if a.err == nil {
		_, a.err = a.progress.AdmitNewcomers(ladder.New([]string{"x"}), 1)
	}
}

func TestNewcomers(t *testing.T) {
	Convey("Given pool members absent from the ladder", t, func() {
		f := newFixture(t, []string{"a", "b"}, []string{"a", "b", "y", "z"})

		report, err := f.progress.RunNext(f.ctx)
		So(err, ShouldBeNil)

		Convey("Then they are appended before scheduling", func() {
			So(report.Newcomers, ShouldHaveLength, 2)
			So(report.Ladder, ShouldHaveLength, 4)
			So(f.exec.Calls(), ShouldEqual, 6)
		})

		Convey("Then the newcomer order is reproducible for the event", func() {
			l := ladder.New([]string{"a", "b"})
			got, err := f.progress.AdmitNewcomers(l, 1)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, report.Newcomers)
		})
	})

	Convey("Given an observer that tries to admit mid-round", t, func() {
		obs := &admitDuringRound{}
		f := newFixture(t, []string{"a", "b"}, []string{"a", "b"}, league.WithObserver(obs))
		obs.progress = f.progress

		_, err := f.progress.RunEvent(f.ctx, false)
		So(err, ShouldBeNil)
		So(errors.Is(obs.err, league.ErrRoundInProgress), ShouldBeTrue)
	})
}

func TestPreview(t *testing.T) {
	Convey("Given a ladder with one division", t, func() {
		bots := []string{"a", "b", "c", "d", "e"}
		f := newFixture(t, bots, bots)

		Convey("When previewing", func() {
			sched, err := f.progress.Preview(f.ctx, false, false)
			So(err, ShouldBeNil)
			So(sched, ShouldHaveLength, 1)
			So(sched[0].Matches, ShouldHaveLength, 10)
			So(f.exec.Calls(), ShouldEqual, 0)

			Convey("Then the live event plays the same pairs in the same order", func() {
				_, err := f.progress.RunEvent(f.ctx, false)
				So(err, ShouldBeNil)
				played := f.exec.Played()
				for i, m := range sched[0].Matches {
					So(played[i], ShouldEqual, m.Pair.A+" vs "+m.Pair.B)
				}
			})
		})

		Convey("When previewing with results", func() {
			pairs := league.Schedule(ladder.New(bots), false)[0].Matches
			first := pairs[0].Pair
			stored := model.MatchResult{Blue: first.A, Orange: first.B, BlueGoals: 3}
			So(f.results.Put(f.ctx, types.NewPairKey(types.LeagueScope(1, "quantum"), first.A, first.B), stored), ShouldBeNil)

			sched, err := f.progress.Preview(f.ctx, false, true)
			So(err, ShouldBeNil)

			Convey("Then stored results are attached without playing", func() {
				So(sched[0].Matches[0].Result, ShouldNotBeNil)
				So(*sched[0].Matches[0].Result, ShouldResemble, stored)
				So(sched[0].Matches[1].Result, ShouldBeNil)
				So(f.exec.Calls(), ShouldEqual, 0)
				So(f.results.Len(), ShouldEqual, 1)
			})
		})

		Convey("When another result of the division is corrupt", func() {
			scope := types.LeagueScope(1, "quantum")
			So(f.results.Put(f.ctx, types.NewPairKey(scope, "a", "b"), model.MatchResult{Blue: "a", Orange: "b", BlueGoals: 1}), ShouldBeNil)
			f.results.PutRaw(types.NewPairKey(scope, "d", "e"), []byte("not json"))

			_, err := f.progress.Preview(f.ctx, false, true)

			Convey("Then the preview fails instead of hiding it", func() {
				So(errors.Is(err, model.ErrCorruptResult), ShouldBeTrue)
				So(f.exec.Calls(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a ladder of one", t, func() {
		So(league.Schedule(ladder.New([]string{"a"}), false), ShouldBeEmpty)
	})
}
