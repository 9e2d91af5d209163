package bubble

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOutcomeGraph(t *testing.T) {
	Convey("Given recorded outcomes", t, func() {
		g := newOutcomeGraph()

		Convey("When results are transitive", func() {
			g.record("a", "b")
			g.record("b", "c")
			g.record("a", "c")
			g.record("a", "b")
			So(g.cycle(), ShouldBeNil)
		})

		Convey("When results form a loop", func() {
			g.record("a", "b")
			g.record("b", "c")
			g.record("c", "a")
			g.record("d", "a")
			So(g.cycle(), ShouldResemble, []string{"a", "b", "c", "a"})
		})
	})
}
