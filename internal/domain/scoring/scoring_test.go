package scoring

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/autoleague/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalc(t *testing.T) {
	Convey("Given results involving bot a", t, func() {
		results := []model.MatchResult{
			{Blue: "a", Orange: "b", BlueGoals: 3, OrangeGoals: 1, BlueShots: 6, OrangeShots: 2, BlueSaves: 1, OrangeSaves: 2, BluePoints: 500, OrangePoints: 200},
			{Blue: "c", Orange: "a", BlueGoals: 2, OrangeGoals: 2, BlueShots: 4, OrangeShots: 5, BlueSaves: 3, OrangeSaves: 0, BluePoints: 300, OrangePoints: 350},
			{Blue: "b", Orange: "c", BlueGoals: 1, OrangeGoals: 0},
		}

		Convey("When folding a's matches", func() {
			s := Calc("a", results)

			Convey("Then both roles are summed", func() {
				So(s, ShouldResemble, CombinedScore{Bot: "a", GoalDiff: 2, Goals: 5, Shots: 11, Saves: 1, Points: 850})
			})
		})

		Convey("When the bot never played", func() {
			So(Calc("z", results), ShouldResemble, CombinedScore{Bot: "z"})
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given scores differing in one field", t, func() {
		x := CombinedScore{Bot: "x", GoalDiff: 5}
		y := CombinedScore{Bot: "y", GoalDiff: 3, Goals: 99, Shots: 99, Saves: 99, Points: 9999}

		Convey("Then goal difference dominates", func() {
			So(Compare(x, y), ShouldBeGreaterThan, 0)
			So(Compare(y, x), ShouldBeLessThan, 0)
		})

		Convey("Then later fields break earlier ties", func() {
			a := CombinedScore{GoalDiff: 1, Goals: 2, Shots: 3, Saves: 4, Points: 5}
			b := a
			So(Compare(a, b), ShouldEqual, 0)
			b.Points = 6
			So(Compare(a, b), ShouldBeLessThan, 0)
			b.Saves = 3
			So(Compare(a, b), ShouldBeGreaterThan, 0)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a finished round robin", t, func() {
		results := []model.MatchResult{
			{Blue: "a", Orange: "b", BlueGoals: 0, OrangeGoals: 2},
			{Blue: "a", Orange: "c", BlueGoals: 1, OrangeGoals: 1},
			{Blue: "b", Orange: "c", BlueGoals: 4, OrangeGoals: 0},
		}

		Convey("When ranking with the default ranker", func() {
			got := NewRanker().Rank([]string{"a", "b", "c"}, results)

			Convey("Then scores are ordered best first", func() {
				So(Bots(got), ShouldResemble, []string{"b", "a", "c"})
				So(got[0].GoalDiff, ShouldEqual, 6)
			})
		})
	})

	Convey("Given participants that are fully tied", t, func() {
		participants := []string{"d", "c", "b", "a"}

		Convey("When the tie-break is stable", func() {
			got := NewRanker(WithTieBreak(TieBreakStable)).Rank(participants, nil)
			So(Bots(got), ShouldResemble, participants)
		})

		Convey("When the tie-break is random", func() {
			r := NewRanker(WithTieBreak(TieBreakRandom), WithRand(rand.New(rand.NewPCG(1, 2))))
			seen := make(map[string]bool)
			for i := 0; i < 50; i++ {
				got := Bots(r.Rank(participants, nil))
				So(got, ShouldHaveLength, 4)
				seen[got[0]] = true
			}

			Convey("Then more than one order appears", func() {
				So(len(seen), ShouldBeGreaterThan, 1)
			})
		})

		Convey("When an unknown tie-break is given", func() {
			r := NewRanker(WithTieBreak("alphabetical"))
			So(r.tieBreak, ShouldEqual, TieBreakStable)
		})
	})
}
