package amm_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/zeebo/assert"

	"github.com/meridian-labs/chainroute/amm"
	"github.com/meridian-labs/chainroute/graph"
)

func closeTo(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tolerance %v)", got, want, tol)
	}
}

func TestConstantProduct_KnownSlippage(t *testing.T) {
	// 1000/1000 pool, 30 bp fee, trade 100: out = 99700 / 1099.7
	q, err := amm.ConstantProduct(100, 1000, 1000, 0.003, amm.DefaultParams())
	assert.NoError(t, err)

	closeTo(t, q.OutputAmount, 99700.0/1099.7, 1e-9)
	closeTo(t, q.EffectiveRate, q.OutputAmount/100, 1e-12)
	closeTo(t, q.PriceImpact, 1-q.EffectiveRate/0.997, 1e-12)
	closeTo(t, q.PriceImpact, 0.0907, 1e-3)
}

func TestConstantProduct_SmallTradeNearSpot(t *testing.T) {
	q, err := amm.ConstantProduct(0.0001, 1_000_000, 2_000_000, 0.003, amm.DefaultParams())
	assert.NoError(t, err)
	closeTo(t, q.EffectiveRate, 2*0.997, 1e-6)
	assert.True(t, q.PriceImpact < 1e-6)
}

func TestConstantProduct_TradeTooLarge(t *testing.T) {
	_, err := amm.ConstantProduct(900, 1000, 1000, 0.003, amm.DefaultParams())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, amm.ErrTradeTooLarge))

	// just under the cap is fine
	_, err = amm.ConstantProduct(899.999, 1000, 1000, 0.003, amm.DefaultParams())
	assert.NoError(t, err)
}

func TestConstantProduct_BadInputs(t *testing.T) {
	p := amm.DefaultParams()

	_, err := amm.ConstantProduct(0, 1000, 1000, 0.003, p)
	assert.True(t, errors.Is(err, amm.ErrNonPositiveInput))

	_, err = amm.ConstantProduct(-5, 1000, 1000, 0.003, p)
	assert.True(t, errors.Is(err, amm.ErrNonPositiveInput))

	_, err = amm.ConstantProduct(10, 0, 1000, 0.003, p)
	assert.True(t, errors.Is(err, amm.ErrNonPositiveReserve))

	_, err = amm.ConstantProduct(10, 1000, -1, 0.003, p)
	assert.True(t, errors.Is(err, amm.ErrNonPositiveReserve))
}

func TestStableSwap_BeatsConstantProductWhenBalanced(t *testing.T) {
	p := amm.DefaultParams()

	cp, err := amm.ConstantProduct(10_000, 1_000_000, 1_000_000, 0.0004, p)
	assert.NoError(t, err)
	ss, err := amm.StableSwap(10_000, 1_000_000, 1_000_000, 0.0004, 100, p)
	assert.NoError(t, err)

	assert.True(t, ss.OutputAmount > cp.OutputAmount)
	assert.True(t, ss.PriceImpact < cp.PriceImpact)
}

func TestStableSwap_ZeroAmplificationUsesDefault(t *testing.T) {
	p := amm.DefaultParams()
	withDefault, err := amm.StableSwap(1000, 500_000, 500_000, 0.0004, 0, p)
	assert.NoError(t, err)
	explicit, err := amm.StableSwap(1000, 500_000, 500_000, 0.0004, p.DefaultAmplification, p)
	assert.NoError(t, err)
	closeTo(t, withDefault.OutputAmount, explicit.OutputAmount, 1e-12)
}

func TestConcentratedLiquidity_MatchesScaledConstantProduct(t *testing.T) {
	p := amm.DefaultParams()

	cl, err := amm.ConcentratedLiquidity(50, 10_000, 20_000, 0.003, p)
	assert.NoError(t, err)
	cp, err := amm.ConstantProduct(50, 10_000*0.30, 20_000*0.30, 0.003, p)
	assert.NoError(t, err)

	closeTo(t, cl.OutputAmount, cp.OutputAmount, 1e-12)
	closeTo(t, cl.PriceImpact, cp.PriceImpact, 1e-12)
}

func TestConcentratedLiquidity_HigherImpactThanFullRange(t *testing.T) {
	p := amm.DefaultParams()

	cl, err := amm.ConcentratedLiquidity(100, 100_000, 100_000, 0.003, p)
	assert.NoError(t, err)
	cp, err := amm.ConstantProduct(100, 100_000, 100_000, 0.003, p)
	assert.NoError(t, err)

	assert.True(t, cl.PriceImpact > cp.PriceImpact)
}

func TestPoolQuote_Dispatch(t *testing.T) {
	p := amm.DefaultParams()

	pool := &graph.LiquidityPool{
		ReserveBase:  1000,
		ReserveQuote: 1000,
		FeeFraction:  0.003,
		Kind:         graph.ConstantProduct,
	}
	q, err := amm.PoolQuote(pool, 100, p)
	assert.NoError(t, err)
	closeTo(t, q.OutputAmount, 99700.0/1099.7, 1e-9)

	pool.Kind = "weighted"
	_, err = amm.PoolQuote(pool, 100, p)
	assert.True(t, errors.Is(err, amm.ErrUnknownPoolKind))

	_, err = amm.PoolQuote(nil, 100, p)
	assert.True(t, errors.Is(err, amm.ErrNilPool))
}

func TestSpotRate(t *testing.T) {
	p := amm.DefaultParams()

	cp := &graph.LiquidityPool{
		ReserveBase:  1000,
		ReserveQuote: 2000,
		FeeFraction:  0.003,
		Kind:         graph.ConstantProduct,
	}
	rate, err := amm.SpotRate(cp, p)
	assert.NoError(t, err)
	closeTo(t, rate, 2*0.997, 1e-12)

	// active-range scaling cancels out of the ratio
	cp.Kind = graph.ConcentratedLiquidity
	rate, err = amm.SpotRate(cp, p)
	assert.NoError(t, err)
	closeTo(t, rate, 2*0.997, 1e-12)

	ss := &graph.LiquidityPool{
		ReserveBase:   1_000_000,
		ReserveQuote:  1_000_000,
		FeeFraction:   0.0004,
		Kind:          graph.StableSwap,
		Amplification: 100,
	}
	rate, err = amm.SpotRate(ss, p)
	assert.NoError(t, err)
	// w = 0.5 and balanced reserves give exactly (1 - fee)
	closeTo(t, rate, 1-0.0004, 1e-12)

	ss.ReserveBase = 0
	_, err = amm.SpotRate(ss, p)
	assert.True(t, errors.Is(err, amm.ErrNonPositiveReserve))
}

// Per-unit rate must never improve as the trade grows; the solvers relax
// edges with a carried amount and rely on this.
func TestMonotoneRate(t *testing.T) {
	p := amm.DefaultParams()
	rng := rand.New(rand.NewSource(42))

	kinds := []graph.PoolKind{graph.ConstantProduct, graph.StableSwap, graph.ConcentratedLiquidity}
	for i := 0; i < 500; i++ {
		kind := kinds[i%len(kinds)]
		pool := &graph.LiquidityPool{
			ReserveBase:   1 + rng.Float64()*1e7,
			ReserveQuote:  1 + rng.Float64()*1e7,
			FeeFraction:   rng.Float64() * 0.01,
			Kind:          kind,
			Amplification: 10 + rng.Float64()*400,
		}

		// concentrated pools cap trades against the scaled-down reserve
		maxFrac := 0.85
		if kind == graph.ConcentratedLiquidity {
			maxFrac = 0.25
		}
		dx2 := pool.ReserveBase * maxFrac * (0.01 + 0.99*rng.Float64())
		dx1 := dx2 * rng.Float64()
		if dx1 <= 0 {
			continue
		}

		q1, err1 := amm.PoolQuote(pool, dx1, p)
		q2, err2 := amm.PoolQuote(pool, dx2, p)
		assert.NoError(t, err1)
		assert.NoError(t, err2)

		if q1.EffectiveRate+1e-12 < q2.EffectiveRate {
			t.Fatalf("pool %d (%s): rate improved with size: %v@%v < %v@%v",
				i, kind, q1.EffectiveRate, dx1, q2.EffectiveRate, dx2)
		}
	}
}

// Zero-fee constant product must not create value on a round trip.
func TestRoundTripConservation(t *testing.T) {
	p := amm.DefaultParams()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		x := 1 + rng.Float64()*1e6
		y := 1 + rng.Float64()*1e6
		dx := x * 0.85 * rng.Float64()
		if dx <= 0 {
			continue
		}

		fwd, err := amm.ConstantProduct(dx, x, y, 0, p)
		assert.NoError(t, err)
		back, err := amm.ConstantProduct(fwd.OutputAmount, y, x, 0, p)
		assert.NoError(t, err)

		if back.OutputAmount > dx*(1+1e-9) {
			t.Fatalf("round trip created value: %v in, %v back", dx, back.OutputAmount)
		}

		// tiny trades approach equality
		if dx < x*1e-7 && back.OutputAmount < dx*(1-1e-4) {
			t.Fatalf("round trip lost too much on tiny trade: %v in, %v back", dx, back.OutputAmount)
		}
	}
}
