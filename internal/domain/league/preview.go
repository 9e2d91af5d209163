package league

import (
	"context"

	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/roundrobin"
	"github.com/okian/autoleague/internal/domain/types"
)

// ScheduledMatch is one pairing of a preview, with its stored result when
// results were requested and one exists.
type ScheduledMatch struct {
	Pair   roundrobin.Pair
	Result *model.MatchResult
}

// DivisionSchedule lists the pairings of one division.
type DivisionSchedule struct {
	Index   int
	Name    string
	Bots    []string
	Matches []ScheduledMatch
}

// Schedule returns the pairings an event with the given parity would play
// on l, top division first. Nothing is executed or stored.
func Schedule(l *ladder.Ladder, oddWeek bool) []DivisionSchedule {
	if l.Len() < 2 {
		return nil
	}
	var out []DivisionSchedule
	for _, div := range EligibleDivisions(l.DivisionCount(), oddWeek) {
		bots := l.RoundRobinParticipants(div)
		ds := DivisionSchedule{Index: div, Name: ladder.DivisionName(div), Bots: bots}
		for _, pair := range roundrobin.Generate(bots) {
			ds.Matches = append(ds.Matches, ScheduledMatch{Pair: pair})
		}
		out = append(out, ds)
	}
	return out
}

// Preview schedules the next event on the latest ladder, including
// newcomers, and optionally attaches results already stored for it.
// It never plays a match or writes anything.
func (p *Progressor) Preview(ctx context.Context, oddWeek, withResults bool) ([]DivisionSchedule, error) {
	source, current, err := p.Current(ctx)
	if err != nil {
		return nil, err
	}
	event := source + 1
	if _, err := p.AdmitNewcomers(current, event); err != nil {
		return nil, err
	}
	if current.Len() < 2 {
		return nil, &model.InsufficientCompetitorsError{Have: current.Len()}
	}
	sched := Schedule(current, oddWeek)
	if !withResults {
		return sched, nil
	}
	for i := range sched {
		scope := types.LeagueScope(event, sched[i].Name)
		stored, err := p.resolver.List(ctx, scope)
		if err != nil {
			return nil, err
		}
		for j := range sched[i].Matches {
			pair := sched[i].Matches[j].Pair
			if r, ok := stored[types.NewPairKey(scope, pair.A, pair.B)]; ok {
				sched[i].Matches[j].Result = &r
			}
		}
	}
	return sched, nil
}
