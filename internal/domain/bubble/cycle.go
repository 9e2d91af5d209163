package bubble

import (
	"errors"
	"slices"

	"github.com/dominikbraun/graph"
)

// outcomeGraph records who beat whom as directed winner -> loser edges.
type outcomeGraph struct {
	graph.Graph[string, string]
}

func newOutcomeGraph() *outcomeGraph {
	return &outcomeGraph{Graph: graph.New(graph.StringHash, graph.Directed())}
}

func (g *outcomeGraph) record(winner, loser string) {
	for _, v := range []string{winner, loser} {
		if err := g.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return
		}
	}
	_ = g.AddEdge(winner, loser)
}

// cycle returns one loop of non-transitive results, e.g. [a b c a] for a
// beats b, b beats c and c beats a, or nil when the results are acyclic.
func (g *outcomeGraph) cycle() []string {
	components, err := graph.StronglyConnectedComponents(g.Graph)
	if err != nil {
		return nil
	}
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil
	}
	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		slices.Sort(comp)
		start := comp[0]
		for next := range adjacency[start] {
			if !slices.Contains(comp, next) {
				continue
			}
			back, err := graph.ShortestPath(g.Graph, next, start)
			if err != nil {
				continue
			}
			return append([]string{start}, back...)
		}
	}
	return nil
}
