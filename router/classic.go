package router

import (
	"container/heap"
	"math"
	"time"

	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/models"
)

// SolveClassic runs the baseline heap Dijkstra from source to target.
// maxHops <= 0 selects the configured default (4 by convention).
//
// The heap uses lazy decrease-key: improvements push duplicate entries and
// stale ones are skipped on extraction when their snapshot no longer
// matches the best known distance. At equal distance the path discovered
// first wins, which is deterministic given edge insertion order.
//
// Complexity: O((V + E) log V) time, O(V + E) space.
func (r *Router) SolveClassic(source, target graph.TokenKey, amount float64, maxHops int) (result *models.RouteResult, err error) {
	start := time.Now()
	defer func() { observe("classic", start, err) }()

	maxHops, err = r.checkQuery(source, target, amount, maxHops)
	if err != nil {
		return nil, err
	}
	if source == target {
		return trivialRoute(source, amount), nil
	}

	routerLog.Debug().
		Stringer("source", source).
		Stringer("target", target).
		Float64("amount", amount).
		Int("maxHops", maxHops).
		Msg("Solving route with classic Dijkstra")

	st := newSearchState(r.graph, r.cost, maxHops)
	st.setSource(source, amount)

	visited := make(map[graph.TokenKey]bool, r.graph.VertexCount())
	pq := make(nodePQ, 0, r.graph.VertexCount())
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{key: source, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		u := item.key

		if u == target {
			break
		}
		if visited[u] {
			continue
		}
		// stale entry: a better distance was found after this push
		if item.dist != st.dist[u] {
			continue
		}
		if st.hops[u] >= maxHops {
			continue
		}
		visited[u] = true

		for _, e := range r.graph.Neighbors(u) {
			v := e.To
			if visited[v] {
				continue
			}
			w, out := r.cost.EdgeCost(st.amount[u], e)
			if math.IsInf(w, 1) {
				continue
			}
			nd := st.dist[u] + w
			if nd < st.distOf(v) && st.hops[u]+1 <= maxHops {
				st.setBest(v, nd, e, out, st.hops[u]+1)
				heap.Push(&pq, &nodeItem{key: v, dist: nd})
			}
		}
	}

	result, err = st.reconstruct(source, target)
	if err != nil {
		routerLog.Debug().Err(err).Msg("Classic solve found no route")
		return nil, err
	}
	routerLog.Debug().
		Int("hops", result.Hops()).
		Float64("output", result.EstimatedOutput).
		Msg("Classic solve finished")
	return result, nil
}

// nodeItem is one heap entry: a vertex and the distance snapshot it was
// pushed with.
type nodeItem struct {
	key  graph.TokenKey
	dist float64
}

// nodePQ is a min-heap of *nodeItem ordered by distance; duplicates from
// lazy decrease-key are tolerated and skipped on pop.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
