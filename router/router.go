// Package router holds the two shortest-path solvers and the edge cost
// model they share. Both solvers consume an immutable graph and produce a
// RouteResult per query; a single graph is safe to share between
// concurrent queries because every query owns its own state.
//
// Edge weights depend on the trade amount carried to the edge's source
// vertex, so this is not a stationary-weight shortest-path instance: two
// prefixes reaching the same vertex can price the same outgoing edge
// differently. Storing a per-vertex carried amount at completion time and
// relaxing with it stays correct because every supported pool family keeps
// the per-unit rate non-increasing in trade size; see the amm package.
package router

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridian-labs/chainroute/config"
	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/metrics"
	"github.com/meridian-labs/chainroute/models"
)

var routerLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	routerLog = zerolog.New(out).With().Timestamp().Str("component", "router").Logger()
}

// Router answers route queries against one immutable graph.
type Router struct {
	graph *graph.Graph
	cost  *CostModel
	opts  config.Options
}

// New creates a router over a built graph. Zero-valued options fall back
// to the conventional defaults.
func New(g *graph.Graph, opts config.Options) *Router {
	defaults := config.Default()
	if opts.GasNormalizer <= 0 {
		opts.GasNormalizer = defaults.GasNormalizer
	}
	if opts.BridgeTimeCoefficient == 0 {
		opts.BridgeTimeCoefficient = defaults.BridgeTimeCoefficient
	}
	if opts.DefaultMaxHops < 1 {
		opts.DefaultMaxHops = defaults.DefaultMaxHops
	}
	if opts.ClassicThreshold < 1 {
		opts.ClassicThreshold = defaults.ClassicThreshold
	}
	if opts.AMM.ActiveRangeFraction <= 0 {
		opts.AMM.ActiveRangeFraction = defaults.AMM.ActiveRangeFraction
	}
	if opts.AMM.DefaultStableA <= 0 {
		opts.AMM.DefaultStableA = defaults.AMM.DefaultStableA
	}
	if opts.AMM.MaxTradeFraction <= 0 {
		opts.AMM.MaxTradeFraction = defaults.AMM.MaxTradeFraction
	}

	return &Router{
		graph: g,
		cost:  NewCostModel(opts),
		opts:  opts,
	}
}

// CostModel returns the cost model in effect for this router.
func (r *Router) CostModel() *CostModel {
	return r.cost
}

// Solve picks an algorithm by graph size: classic Dijkstra below the
// configured threshold, BMSSP above it. maxHops <= 0 selects the
// configured default.
func (r *Router) Solve(source, target graph.TokenKey, amount float64, maxHops int) (*models.RouteResult, error) {
	if r.graph.VertexCount() < r.opts.ClassicThreshold {
		return r.SolveClassic(source, target, amount, maxHops)
	}
	return r.SolveBMSSP(source, target, amount, maxHops)
}

// checkQuery validates the query endpoints and normalizes the hop budget.
func (r *Router) checkQuery(source, target graph.TokenKey, amount float64, maxHops int) (int, error) {
	if !r.graph.Contains(source) {
		return 0, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if !r.graph.Contains(target) {
		return 0, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrNonPositiveAmount, amount)
	}
	if maxHops <= 0 {
		maxHops = r.opts.DefaultMaxHops
	}
	return maxHops, nil
}

// observe records one solve in the Prometheus collectors.
func observe(algorithm string, start time.Time, err error) {
	metrics.SolveDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
	outcome := "ok"
	switch {
	case err == nil:
	case isNoRoute(err):
		outcome = "no_route"
	default:
		outcome = "error"
	}
	metrics.RoutesSolved.WithLabelValues(algorithm, outcome).Inc()
}
