package types_test

import (
	"testing"

	types "github.com/okian/autoleague/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPairKey(t *testing.T) {
	Convey("Given two competitors", t, func() {
		Convey("When building keys in both orders", func() {
			k1 := types.NewPairKey(types.BubbleScope, "skybot", "atba")
			k2 := types.NewPairKey(types.BubbleScope, "atba", "skybot")

			Convey("Then they are identical and ordered", func() {
				So(k1, ShouldResemble, k2)
				So(k1.A, ShouldEqual, "atba")
				So(k1.Name(), ShouldEqual, "atba_vs_skybot")
				So(k1.String(), ShouldEqual, "bubble/atba_vs_skybot")
			})
		})

		Convey("When the key has no scope", func() {
			k := types.NewPairKey("", "b", "a")
			So(k.String(), ShouldEqual, "a_vs_b")
		})
	})
}

func TestLeagueScope(t *testing.T) {
	Convey("Given an event number and division name", t, func() {
		So(types.LeagueScope(7, "Quantum"), ShouldEqual, "event_7/quantum")
		So(types.LeagueScope(0, "circuit"), ShouldEqual, "event_0/circuit")
	})
}

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		entry := types.Entry{Rank: 1, Bot: "skybot", Division: "quantum"}
		So(entry.Rank, ShouldEqual, 1)
		So(entry.Bot, ShouldEqual, "skybot")
		So(entry.Division, ShouldEqual, "quantum")
	})
}
