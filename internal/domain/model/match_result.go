// Package model contains domain models passed between layers.
package model

import "fmt"

// Side names the team a competitor played for in a match.
type Side string

// Team sides.
const (
	Blue   Side = "blue"
	Orange Side = "orange"
)

// MatchResult is the immutable record of one contest.
// The JSON field names are the on-disk result format.
type MatchResult struct {
	Blue         string `json:"blue"          bson:"blue"`
	Orange       string `json:"orange"        bson:"orange"`
	BlueGoals    int    `json:"blue_goals"    bson:"blue_goals"`
	OrangeGoals  int    `json:"orange_goals"  bson:"orange_goals"`
	BlueShots    int    `json:"blue_shots"    bson:"blue_shots"`
	OrangeShots  int    `json:"orange_shots"  bson:"orange_shots"`
	BlueSaves    int    `json:"blue_saves"    bson:"blue_saves"`
	OrangeSaves  int    `json:"orange_saves"  bson:"orange_saves"`
	BluePoints   int    `json:"blue_points"   bson:"blue_points"`
	OrangePoints int    `json:"orange_points" bson:"orange_points"`
}

// SideStats are one side's statistics in a single match.
type SideStats struct {
	Goals  int
	Shots  int
	Saves  int
	Points int
}

// IsDraw reports whether both sides scored the same number of goals.
func (r MatchResult) IsDraw() bool {
	return r.BlueGoals == r.OrangeGoals
}

// WinningSide returns the side with more goals. A goal draw falls back to
// points, then shots, then saves; a complete tie goes to blue.
func (r MatchResult) WinningSide() Side {
	pairs := [...][2]int{
		{r.BlueGoals, r.OrangeGoals},
		{r.BluePoints, r.OrangePoints},
		{r.BlueShots, r.OrangeShots},
		{r.BlueSaves, r.OrangeSaves},
	}
	for _, p := range pairs {
		switch {
		case p[0] > p[1]:
			return Blue
		case p[1] > p[0]:
			return Orange
		}
	}
	return Blue
}

// Winner returns the identifier of the winning competitor.
func (r MatchResult) Winner() string {
	if r.WinningSide() == Blue {
		return r.Blue
	}
	return r.Orange
}

// Loser returns the identifier of the losing competitor.
func (r MatchResult) Loser() string {
	if r.WinningSide() == Blue {
		return r.Orange
	}
	return r.Blue
}

// Normalized returns r with both competitor identifiers in canonical form,
// so a client reporting display names still matches the scheduled pair.
func (r MatchResult) Normalized() MatchResult {
	r.Blue = Normalize(r.Blue)
	r.Orange = Normalize(r.Orange)
	return r
}

// StatsFor returns bot's own and its opponent's statistics.
// ok is false when bot did not play in the match.
func (r MatchResult) StatsFor(bot string) (own, opp SideStats, ok bool) {
	blue := SideStats{Goals: r.BlueGoals, Shots: r.BlueShots, Saves: r.BlueSaves, Points: r.BluePoints}
	orange := SideStats{Goals: r.OrangeGoals, Shots: r.OrangeShots, Saves: r.OrangeSaves, Points: r.OrangePoints}
	switch bot {
	case r.Blue:
		return blue, orange, true
	case r.Orange:
		return orange, blue, true
	default:
		return SideStats{}, SideStats{}, false
	}
}

// Validate checks that the record names two distinct competitors and has
// no negative statistics.
func (r MatchResult) Validate() error {
	if r.Blue == "" || r.Orange == "" {
		return fmt.Errorf("match result: missing competitor (blue=%q orange=%q)", r.Blue, r.Orange)
	}
	if r.Blue == r.Orange {
		return fmt.Errorf("match result: %q played itself", r.Blue)
	}
	for _, v := range []int{
		r.BlueGoals, r.OrangeGoals, r.BlueShots, r.OrangeShots,
		r.BlueSaves, r.OrangeSaves, r.BluePoints, r.OrangePoints,
	} {
		if v < 0 {
			return fmt.Errorf("match result %s vs %s: negative statistic", r.Blue, r.Orange)
		}
	}
	return nil
}

// String renders the score line used in logs.
func (r MatchResult) String() string {
	return fmt.Sprintf("%s %d - %d %s", r.Blue, r.BlueGoals, r.OrangeGoals, r.Orange)
}
