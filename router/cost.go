package router

import (
	"math"

	"github.com/meridian-labs/chainroute/amm"
	"github.com/meridian-labs/chainroute/config"
	"github.com/meridian-labs/chainroute/graph"
)

// Unusable is the sentinel weight of an edge that can never be relaxed
// into: a swap edge with neither a working pool nor a nominal rate.
var Unusable = math.Inf(1)

// CostModel maps a (carried amount, edge) pair to an additive non-negative
// weight and the amount leaving the edge.
//
// Weights live in log space: a swap or bridge at rate r contributes
// -ln(r), so the summed path weight is -ln of the product of rates and the
// minimum-weight path maximizes the trader's output. Gas and bridge
// latency are scaled into the same units by the gas normalizer and the
// time coefficient.
type CostModel struct {
	gasNormalizer float64
	timeCoeff     float64
	ammParams     amm.Params
}

// NewCostModel builds a cost model from build options.
func NewCostModel(opts config.Options) *CostModel {
	return &CostModel{
		gasNormalizer: opts.GasNormalizer,
		timeCoeff:     opts.BridgeTimeCoefficient,
		ammParams: amm.Params{
			ActiveRangeFraction:  opts.AMM.ActiveRangeFraction,
			DefaultAmplification: opts.AMM.DefaultStableA,
			MaxTradeFraction:     opts.AMM.MaxTradeFraction,
		},
	}
}

// AMMParams exposes the kernel parameters in effect, so the validator can
// re-run the same math the solver priced edges with.
func (m *CostModel) AMMParams() amm.Params {
	return m.ammParams
}

// EdgeCost prices one edge for the given carried amount. It returns the
// edge weight and the output amount leaving the edge. An unusable edge
// returns (Unusable, 0).
//
// Swap edges quote their pool; when the kernel rejects the trade the edge
// falls back to its nominal rate, and without a nominal rate it is
// unusable. Bridge edges apply their fixed fee and a latency penalty.
func (m *CostModel) EdgeCost(amount float64, e *graph.Edge) (float64, float64) {
	gasTerm := e.GasCost / m.gasNormalizer

	switch e.Kind {
	case graph.SwapEdge:
		if e.Pool != nil {
			quote, err := amm.PoolQuote(e.Pool, amount, m.ammParams)
			if err == nil {
				return -math.Log(quote.EffectiveRate) + gasTerm, quote.OutputAmount
			}
		}
		if e.NominalRate > 0 {
			return -math.Log(e.NominalRate) + gasTerm, amount * e.NominalRate
		}
		return Unusable, 0

	case graph.BridgeEdge:
		rate := 1 - e.BridgeFeeFraction
		weight := -math.Log(rate) + e.TimeDelaySeconds*m.timeCoeff + gasTerm
		return weight, amount * rate

	default:
		return Unusable, 0
	}
}
