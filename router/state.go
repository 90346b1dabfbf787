package router

import (
	"fmt"
	"math"

	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/models"
)

// searchState is the per-query solver state shared by both algorithms:
// best known distances, predecessor edges for path reconstruction, the
// hop depth at which each distance was set, and the trade amount carried
// to each vertex. It is owned by one solve call and released when the
// call returns; the graph itself is never mutated.
type searchState struct {
	g       *graph.Graph
	cost    *CostModel
	maxHops int

	dist   map[graph.TokenKey]float64
	prev   map[graph.TokenKey]*graph.Edge
	hops   map[graph.TokenKey]int
	amount map[graph.TokenKey]float64
}

func newSearchState(g *graph.Graph, cost *CostModel, maxHops int) *searchState {
	return &searchState{
		g:       g,
		cost:    cost,
		maxHops: maxHops,
		dist:    make(map[graph.TokenKey]float64),
		prev:    make(map[graph.TokenKey]*graph.Edge),
		hops:    make(map[graph.TokenKey]int),
		amount:  make(map[graph.TokenKey]float64),
	}
}

// distOf returns the best known distance to v, +Inf when v was never
// reached.
func (st *searchState) distOf(v graph.TokenKey) float64 {
	if d, ok := st.dist[v]; ok {
		return d
	}
	return math.Inf(1)
}

func (st *searchState) setSource(source graph.TokenKey, inputAmount float64) {
	st.dist[source] = 0
	st.hops[source] = 0
	st.amount[source] = inputAmount
}

func (st *searchState) setBest(v graph.TokenKey, d float64, via *graph.Edge, out float64, hopCount int) {
	st.dist[v] = d
	st.prev[v] = via
	st.hops[v] = hopCount
	st.amount[v] = out
}

// reconstruct walks the predecessor chain from target back to source and
// assembles the route. Per-step weights are recovered from the distance
// deltas, so the reported total is exactly their sum.
func (st *searchState) reconstruct(source, target graph.TokenKey) (*models.RouteResult, error) {
	if math.IsInf(st.distOf(target), 1) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRoute, source, target)
	}

	var steps []models.Step
	cur := target
	for cur != source {
		e := st.prev[cur]
		if e == nil {
			return nil, fmt.Errorf("%w: broken predecessor chain at %s", ErrNoRoute, cur)
		}
		steps = append(steps, models.Step{
			From:         e.From,
			To:           e.To,
			Edge:         e,
			Weight:       st.dist[cur] - st.dist[e.From],
			InputAmount:  st.amount[e.From],
			OutputAmount: st.amount[cur],
		})
		if len(steps) > st.g.VertexCount() {
			return nil, fmt.Errorf("%w: predecessor cycle at %s", ErrNoRoute, cur)
		}
		cur = e.From
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	path := make([]graph.TokenKey, 0, len(steps)+1)
	path = append(path, source)
	for _, step := range steps {
		path = append(path, step.To)
	}

	return &models.RouteResult{
		Path:            path,
		Steps:           steps,
		TotalWeight:     st.dist[target],
		EstimatedOutput: st.amount[target],
	}, nil
}

// trivialRoute covers the source == target query.
func trivialRoute(source graph.TokenKey, amount float64) *models.RouteResult {
	return &models.RouteResult{
		Path:            []graph.TokenKey{source},
		EstimatedOutput: amount,
	}
}
