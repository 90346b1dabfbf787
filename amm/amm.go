// Package amm is the pure pricing kernel for the three supported pool
// families. Every function maps (input amount, pool state) to an output
// amount, an effective rate and a price impact, with no I/O and no
// allocation beyond the returned quote.
//
// All three families keep the per-unit rate monotonically non-increasing
// in the input amount. The solvers rely on that property when they relax
// edges with a per-vertex carried amount; a pool model that improves its
// rate for larger trades must not be added here without revisiting the
// solver design.
package amm

import (
	"fmt"
	"math"

	"github.com/meridian-labs/chainroute/graph"
)

// Quote is the result of pricing one trade against one pool.
type Quote struct {
	// OutputAmount received for the input, after fees and impact
	OutputAmount float64
	// EffectiveRate is OutputAmount / input
	EffectiveRate float64
	// PriceImpact is the relative loss versus the spot rate, in [0, 1]
	PriceImpact float64
}

// Params are the kernel's tunables; see DefaultParams for the conventions.
type Params struct {
	// ActiveRangeFraction scales concentrated-liquidity reserves down to
	// the in-range share
	ActiveRangeFraction float64
	// DefaultAmplification is used for stable-swap pools that do not carry
	// their own coefficient
	DefaultAmplification float64
	// MaxTradeFraction caps the input at this share of the input-side
	// reserve
	MaxTradeFraction float64
}

// DefaultParams returns the conventional kernel parameters: 30% active
// range, amplification 100, trades capped at 90% of the input reserve.
func DefaultParams() Params {
	return Params{
		ActiveRangeFraction:  0.30,
		DefaultAmplification: 100,
		MaxTradeFraction:     0.90,
	}
}

// ConstantProduct prices a trade against a Uniswap-V2-style x*y=k pool.
// reserveIn is the input-token reserve, reserveOut the output-token
// reserve, fee the pool fee fraction.
func ConstantProduct(dx, reserveIn, reserveOut, fee float64, p Params) (Quote, error) {
	if err := checkTrade(dx, reserveIn, reserveOut, p); err != nil {
		return Quote{}, err
	}

	dxAfterFee := dx * (1 - fee)
	out := reserveOut * dxAfterFee / (reserveIn + dxAfterFee)

	rate := out / dx
	spot := (reserveOut / reserveIn) * (1 - fee)
	return Quote{
		OutputAmount:  out,
		EffectiveRate: rate,
		PriceImpact:   clamp01(1 - rate/spot),
	}, nil
}

// StableSwap prices a trade against a Curve-style stablecoin pool. The
// output blends a constant-sum quote with a constant-product quote by a
// weight driven by the amplification coefficient and the reserve balance.
func StableSwap(dx, reserveIn, reserveOut, fee, amplification float64, p Params) (Quote, error) {
	if amplification <= 0 {
		amplification = p.DefaultAmplification
	}

	cp, err := ConstantProduct(dx, reserveIn, reserveOut, fee, p)
	if err != nil {
		return Quote{}, err
	}

	w := math.Min(1, amplification/200) *
		math.Min(reserveIn, reserveOut) / math.Max(reserveIn, reserveOut)
	out := w*dx*(1-fee) + (1-w)*cp.OutputAmount

	rate := out / dx
	spot := (1 - fee) * (w + (1-w)*reserveOut/reserveIn)
	return Quote{
		OutputAmount:  out,
		EffectiveRate: rate,
		PriceImpact:   clamp01(1 - rate/spot),
	}, nil
}

// ConcentratedLiquidity prices a trade against a Uniswap-V3-style pool by
// shrinking both reserves to the active-range fraction and applying the
// constant-product formula to the effective reserves.
func ConcentratedLiquidity(dx, reserveIn, reserveOut, fee float64, p Params) (Quote, error) {
	frac := p.ActiveRangeFraction
	if frac <= 0 || frac > 1 {
		frac = DefaultParams().ActiveRangeFraction
	}
	return ConstantProduct(dx, reserveIn*frac, reserveOut*frac, fee, p)
}

// PoolQuote dispatches to the matching family for a pool, using the pool's
// own fee and amplification.
func PoolQuote(pool *graph.LiquidityPool, dx float64, p Params) (Quote, error) {
	if pool == nil {
		return Quote{}, ErrNilPool
	}
	switch pool.Kind {
	case graph.ConstantProduct:
		return ConstantProduct(dx, pool.ReserveBase, pool.ReserveQuote, pool.FeeFraction, p)
	case graph.StableSwap:
		return StableSwap(dx, pool.ReserveBase, pool.ReserveQuote, pool.FeeFraction, pool.Amplification, p)
	case graph.ConcentratedLiquidity:
		return ConcentratedLiquidity(dx, pool.ReserveBase, pool.ReserveQuote, pool.FeeFraction, p)
	default:
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownPoolKind, pool.Kind)
	}
}

// SpotRate returns the zero-impact rate of a pool: the output/input ratio
// an infinitesimal trade would realize after fees. The validator uses it
// to compute the theoretical output a route would have without slippage.
func SpotRate(pool *graph.LiquidityPool, p Params) (float64, error) {
	if pool == nil {
		return 0, ErrNilPool
	}
	if pool.ReserveBase <= 0 || pool.ReserveQuote <= 0 {
		return 0, fmt.Errorf("%w: %v/%v", ErrNonPositiveReserve, pool.ReserveBase, pool.ReserveQuote)
	}
	x, y, fee := pool.ReserveBase, pool.ReserveQuote, pool.FeeFraction
	switch pool.Kind {
	case graph.ConstantProduct, graph.ConcentratedLiquidity:
		// the active-range scaling leaves the reserve ratio unchanged
		return (y / x) * (1 - fee), nil
	case graph.StableSwap:
		amplification := pool.Amplification
		if amplification <= 0 {
			amplification = p.DefaultAmplification
		}
		w := math.Min(1, amplification/200) * math.Min(x, y) / math.Max(x, y)
		return (1 - fee) * (w + (1-w)*y/x), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPoolKind, pool.Kind)
	}
}

func checkTrade(dx, reserveIn, reserveOut float64, p Params) error {
	if dx <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositiveInput, dx)
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return fmt.Errorf("%w: %v/%v", ErrNonPositiveReserve, reserveIn, reserveOut)
	}
	maxFrac := p.MaxTradeFraction
	if maxFrac <= 0 || maxFrac > 1 {
		maxFrac = DefaultParams().MaxTradeFraction
	}
	if dx >= maxFrac*reserveIn {
		return fmt.Errorf("%w: input %v >= %v of reserve %v", ErrTradeTooLarge, dx, maxFrac, reserveIn)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
