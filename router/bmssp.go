package router

import (
	"math"
	"sort"
	"time"

	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/models"
)

// SolveBMSSP runs the bounded multi-source shortest-path solver
// (pivot-set-bounded Dijkstra). Instead of settling vertices one at a time
// in globally sorted order, it works in bounded multi-source waves: each
// recursion level runs FindPivots to shrink its frontier to a pivot set,
// recurses on pivot batches at the level below, and re-relaxes whatever
// the sub-calls completed. With k = max(2, ⌊log^{1/3} n⌋) relaxation
// rounds per pivot search and t = max(2, ⌊log^{2/3} n⌋) batching bits per
// level, the frontier shrinks by a factor k per level, which is what
// breaks the sorting barrier on large sparse graphs.
//
// On small graphs the parameter floors collapse the recursion to a few
// rounds of bounded Bellman-Ford; prefer SolveClassic below the configured
// threshold (Solve does this automatically).
func (r *Router) SolveBMSSP(source, target graph.TokenKey, amount float64, maxHops int) (result *models.RouteResult, err error) {
	start := time.Now()
	defer func() { observe("bmssp", start, err) }()

	maxHops, err = r.checkQuery(source, target, amount, maxHops)
	if err != nil {
		return nil, err
	}
	if source == target {
		return trivialRoute(source, amount), nil
	}

	n := r.graph.VertexCount()
	run := newBMSSPRun(r.graph, r.cost, maxHops, target, n)

	routerLog.Debug().
		Stringer("source", source).
		Stringer("target", target).
		Float64("amount", amount).
		Int("maxHops", maxHops).
		Int("k", run.k).
		Int("t", run.t).
		Int("levels", run.levels).
		Msg("Solving route with BMSSP")

	run.setSource(source, amount)
	run.drive(source)

	result, err = run.reconstruct(source, target)
	if err != nil {
		routerLog.Debug().Err(err).Msg("BMSSP solve found no route")
		return nil, err
	}
	routerLog.Debug().
		Int("hops", result.Hops()).
		Float64("output", result.EstimatedOutput).
		Msg("BMSSP solve finished")
	return result, nil
}

// bmsspRun owns the state of one BMSSP execution on top of the shared
// search state: the completed set, the recursion parameters, and the dirty
// list of vertices improved since they were last handed to a frontier.
type bmsspRun struct {
	*searchState

	target    graph.TokenKey
	completed map[graph.TokenKey]bool

	// dirty collects vertices whose distance improved and whose outgoing
	// edges have not been re-examined yet; levels drain it into their
	// frontiers, and whatever a level leaves unprocessed bubbles up
	dirty    []graph.TokenKey
	dirtySet map[graph.TokenKey]bool

	// children indexes the predecessor forest: children[u] holds the
	// vertices whose current label was derived from u's label. Kept so a
	// re-label can drop every label derived from the displaced one.
	children map[graph.TokenKey]map[graph.TokenKey]bool

	k      int
	t      int
	levels int
}

func newBMSSPRun(g *graph.Graph, cost *CostModel, maxHops int, target graph.TokenKey, n int) *bmsspRun {
	lg := math.Log2(math.Max(2, float64(n)))
	k := int(math.Cbrt(lg))
	if k < 2 {
		k = 2
	}
	t := int(math.Pow(lg, 2.0/3.0))
	if t < 2 {
		t = 2
	}
	levels := int(math.Ceil(lg / float64(t)))
	if levels < 1 {
		levels = 1
	}

	return &bmsspRun{
		searchState: newSearchState(g, cost, maxHops),
		target:      target,
		completed:   make(map[graph.TokenKey]bool, n),
		dirtySet:    make(map[graph.TokenKey]bool, n),
		children:    make(map[graph.TokenKey]map[graph.TokenKey]bool, n),
		k:           k,
		t:           t,
		levels:      levels,
	}
}

// drive repeats top-level calls until no improved vertex is left
// unexamined, so the distance map reaches the same fixpoint the classic
// solver converges to. Passes shrink the work because improvements
// strictly decrease finite distances; the cap guards against pathological
// relabel churn.
func (b *bmsspRun) drive(source graph.TokenKey) {
	passCap := (b.g.VertexCount() + 1) * (b.maxHops + 1)
	pending := []graph.TokenKey{source}
	for pass := 0; len(pending) > 0; pass++ {
		if pass > passCap {
			routerLog.Warn().Int("pending", len(pending)).Msg("BMSSP pass cap reached")
			return
		}
		b.solve(b.levels, math.Inf(1), pending)
		pending = b.drainDirty()
	}
}

// solve is the recursive BMSSP procedure: complete every vertex of the
// pivot wave below the bound B, then recurse on pivot batches and
// re-relax what the sub-calls completed. It returns the (possibly
// tightened) bound and the set of vertices it completed.
func (b *bmsspRun) solve(level int, bound float64, sources []graph.TokenKey) (float64, []graph.TokenKey) {
	if level <= 0 || len(sources) == 0 {
		return bound, b.solveBase(bound, sources)
	}

	pivots, wave := b.findPivots(bound, sources)

	var completedSet []graph.TokenKey
	for _, v := range wave {
		if b.distOf(v) >= bound {
			continue
		}
		if !b.completed[v] {
			b.completed[v] = true
			completedSet = append(completedSet, v)
			b.relaxBounded(v, bound)
		}
	}

	frontier := newFrontier(b)
	frontier.add(pivots)
	frontier.add(b.drainDirty())

	bi := bound
	limit := b.completionLimit(level)
	batch := b.batchSize(level)
	iterCap := b.iterationCap()

	for i := 0; len(completedSet) < limit && frontier.len() > 0 && i < iterCap; i++ {
		subSources := frontier.pull(batch)

		subBound, subCompleted := b.solve(level-1, bi, subSources)

		completedSet = append(completedSet, subCompleted...)
		for _, u := range subCompleted {
			b.relaxBounded(u, bi)
		}
		frontier.add(b.drainDirty())

		if subBound < bi {
			bi = subBound
		}
		if b.distOf(b.target) < bi && b.completed[b.target] {
			break
		}
	}

	// hand unprocessed frontier back to the caller
	for _, v := range frontier.drain() {
		b.markDirty(v)
	}
	return bi, completedSet
}

// solveBase is the level-0 case: complete each source below the bound and
// relax its outgoing edges once; improvements surface through the dirty
// list.
func (b *bmsspRun) solveBase(bound float64, sources []graph.TokenKey) []graph.TokenKey {
	var completedSet []graph.TokenKey
	for _, s := range sources {
		if b.distOf(s) >= bound {
			continue
		}
		if !b.completed[s] {
			b.completed[s] = true
			completedSet = append(completedSet, s)
		}
		b.relaxBounded(s, bound)
	}
	return completedSet
}

// findPivots performs k rounds of bounded Bellman-Ford relaxation from the
// source set and reduces it to the pivots: sources whose subtree in the
// predecessor forest induced on the visited wave W has size >= k. When the
// wave outgrows k*|S| the search aborts and every source stays a pivot.
// The reduction invariant is |pivots| <= |W|/k.
func (b *bmsspRun) findPivots(bound float64, sources []graph.TokenKey) (pivots, wave []graph.TokenKey) {
	wave = append(wave, sources...)
	inWave := make(map[graph.TokenKey]bool, len(sources)*b.k)
	for _, s := range sources {
		inWave[s] = true
	}

	frontier := sources
	for round := 0; round < b.k && len(frontier) > 0; round++ {
		var next []graph.TokenKey
		nextSeen := make(map[graph.TokenKey]bool)
		for _, u := range frontier {
			for _, v := range b.relaxBounded(u, bound) {
				if !inWave[v] {
					inWave[v] = true
					wave = append(wave, v)
				}
				if !nextSeen[v] {
					nextSeen[v] = true
					next = append(next, v)
				}
			}
		}
		if len(wave) > b.k*len(sources) {
			return sources, wave
		}
		frontier = next
	}

	children := make(map[graph.TokenKey][]graph.TokenKey, len(wave))
	for _, v := range wave {
		if e := b.prev[v]; e != nil && inWave[e.From] {
			children[e.From] = append(children[e.From], v)
		}
	}
	for _, s := range sources {
		if b.subtreeSize(children, s, len(wave)) >= b.k {
			pivots = append(pivots, s)
		}
	}
	return pivots, wave
}

func (b *bmsspRun) subtreeSize(children map[graph.TokenKey][]graph.TokenKey, root graph.TokenKey, limit int) int {
	size := 0
	stack := []graph.TokenKey{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		if size >= limit {
			return size
		}
		stack = append(stack, children[v]...)
	}
	return size
}

// relaxBounded relaxes every outgoing edge of u, accepting improvements
// strictly below the bound that respect the hop cap. A completed vertex is
// re-opened when a strictly better distance reaches it; with non-negative
// weights that only happens while the wave is still converging.
func (b *bmsspRun) relaxBounded(u graph.TokenKey, bound float64) []graph.TokenKey {
	du := b.distOf(u)
	if math.IsInf(du, 1) || b.hops[u] >= b.maxHops {
		return nil
	}

	var improved []graph.TokenKey
	au := b.amount[u]
	nextHops := b.hops[u] + 1
	for _, e := range b.g.Neighbors(u) {
		w, out := b.cost.EdgeCost(au, e)
		if math.IsInf(w, 1) {
			continue
		}
		nd := du + w
		if nd >= bound || nd >= b.distOf(e.To) {
			continue
		}
		b.relabel(e, nd, out, nextHops)
		improved = append(improved, e.To)
	}
	return improved
}

// relabel installs an improved label on e.To and drops every label that
// was derived from the displaced one. A displaced label's descendants
// cannot simply wait for re-relaxation: the new label can sit at the hop
// cap, where e.To never relaxes again, and the descendants would keep
// distances, amounts and prev edges computed from a label that no longer
// exists. They are cleared instead, and every labeled vertex with an edge
// into the cleared set is queued to derive them afresh.
func (b *bmsspRun) relabel(e *graph.Edge, nd, out float64, hopCount int) {
	v := e.To
	if old := b.prev[v]; old != nil {
		delete(b.children[old.From], v)
	}
	b.setBest(v, nd, e, out, hopCount)
	if b.children[e.From] == nil {
		b.children[e.From] = make(map[graph.TokenKey]bool)
	}
	b.children[e.From][v] = true
	delete(b.completed, v)
	b.markDirty(v)

	cleared := b.clearDescendants(v)
	if len(cleared) == 0 {
		return
	}
	for u := range b.dist {
		for _, edge := range b.g.Neighbors(u) {
			if cleared[edge.To] {
				b.markDirty(u)
				break
			}
		}
	}
}

// clearDescendants removes the label of every predecessor-forest
// descendant of v and reports the cleared set.
func (b *bmsspRun) clearDescendants(v graph.TokenKey) map[graph.TokenKey]bool {
	if len(b.children[v]) == 0 {
		return nil
	}

	cleared := make(map[graph.TokenKey]bool)
	stack := make([]graph.TokenKey, 0, len(b.children[v]))
	for c := range b.children[v] {
		stack = append(stack, c)
	}
	delete(b.children, v)

	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cleared[w] {
			continue
		}
		cleared[w] = true
		for c := range b.children[w] {
			stack = append(stack, c)
		}
		delete(b.children, w)
		delete(b.dist, w)
		delete(b.prev, w)
		delete(b.hops, w)
		delete(b.amount, w)
		delete(b.completed, w)
	}
	return cleared
}

func (b *bmsspRun) markDirty(v graph.TokenKey) {
	if !b.dirtySet[v] {
		b.dirtySet[v] = true
		b.dirty = append(b.dirty, v)
	}
}

func (b *bmsspRun) drainDirty() []graph.TokenKey {
	if len(b.dirty) == 0 {
		return nil
	}
	out := b.dirty
	b.dirty = nil
	b.dirtySet = make(map[graph.TokenKey]bool)
	return out
}

// completionLimit is k * 2^(level*t), the wave size at which a level stops
// recursing.
func (b *bmsspRun) completionLimit(level int) int {
	shift := level * b.t
	if shift > 30 {
		return math.MaxInt
	}
	return b.k << shift
}

// batchSize is 2^((level-1)*t), the pivot batch handed to each sub-call.
func (b *bmsspRun) batchSize(level int) int {
	shift := (level - 1) * b.t
	if shift < 0 {
		shift = 0
	}
	if shift > 20 {
		shift = 20
	}
	return 1 << shift
}

// iterationCap is 2^t sub-calls per level.
func (b *bmsspRun) iterationCap() int {
	shift := b.t
	if shift > 20 {
		shift = 20
	}
	return 1 << shift
}

// frontier is the per-level pool of candidate sources, pulled in
// ascending distance order with the key string as the deterministic
// tie-break.
type frontier struct {
	run   *bmsspRun
	items []graph.TokenKey
	seen  map[graph.TokenKey]bool
}

func newFrontier(run *bmsspRun) *frontier {
	return &frontier{run: run, seen: make(map[graph.TokenKey]bool)}
}

func (f *frontier) add(keys []graph.TokenKey) {
	for _, v := range keys {
		if !f.seen[v] {
			f.seen[v] = true
			f.items = append(f.items, v)
		}
	}
}

func (f *frontier) len() int {
	return len(f.items)
}

// pull removes up to n smallest-distance vertices.
func (f *frontier) pull(n int) []graph.TokenKey {
	sort.Slice(f.items, func(i, j int) bool {
		di, dj := f.run.distOf(f.items[i]), f.run.distOf(f.items[j])
		if di != dj {
			return di < dj
		}
		return f.items[i].String() < f.items[j].String()
	})
	if n > len(f.items) {
		n = len(f.items)
	}
	pulled := f.items[:n]
	f.items = f.items[n:]
	for _, v := range pulled {
		delete(f.seen, v)
	}
	return pulled
}

func (f *frontier) drain() []graph.TokenKey {
	out := f.items
	f.items = nil
	f.seen = make(map[graph.TokenKey]bool)
	return out
}
