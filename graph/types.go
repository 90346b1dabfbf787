package graph

import (
	"fmt"
	"strings"
)

// TokenKey identifies a vertex in the routing graph: one token on one chain.
// The canonical string form is "SYMBOL.chain", e.g. "USDC.ethereum".
// Keys compare by exact equality; no case folding is applied.
type TokenKey struct {
	Symbol string
	Chain  string
}

// String returns the canonical "SYMBOL.chain" form.
func (k TokenKey) String() string {
	return k.Symbol + "." + k.Chain
}

// ParseTokenKey parses the canonical "SYMBOL.chain" form back into a key.
func ParseTokenKey(s string) (TokenKey, error) {
	symbol, chain, found := strings.Cut(s, ".")
	if !found || symbol == "" || chain == "" {
		return TokenKey{}, fmt.Errorf("invalid token key %q: want SYMBOL.chain", s)
	}
	return TokenKey{Symbol: symbol, Chain: chain}, nil
}

// Token is a graph vertex with its optional on-chain attributes.
// Only the Key participates in routing; the rest is advisory metadata
// baked in at build time.
type Token struct {
	Key TokenKey
	// Contract address on the token's chain, empty for native assets
	Address string
	// Number of decimal places
	Decimals int
	// Cached USD price from the price feed at build time, 0 when unknown
	PriceUSD float64
}

// PoolKind selects which AMM closed-form prices a swap edge.
type PoolKind string

const (
	ConstantProduct       PoolKind = "constant_product"
	StableSwap            PoolKind = "stable_swap"
	ConcentratedLiquidity PoolKind = "concentrated_liquidity"
)

// Valid reports whether the pool kind is one of the supported families.
func (k PoolKind) Valid() bool {
	switch k {
	case ConstantProduct, StableSwap, ConcentratedLiquidity:
		return true
	}
	return false
}

// LiquidityPool holds the AMM state backing a swap edge.
// ReserveBase is denominated in the edge source token, ReserveQuote in the
// edge target token.
type LiquidityPool struct {
	ReserveBase  float64
	ReserveQuote float64
	// Total value locked in USD; advisory, used by the validator only
	LiquidityUSD float64
	// Fee as a fraction in [0, 0.05], e.g. 0.003 for 30 bp
	FeeFraction float64
	Kind        PoolKind
	// Amplification coefficient for stable-swap pools; 0 means use the
	// configured default
	Amplification float64
	// 24h volume in USD; advisory
	Volume24h float64
	// DEX venue name, e.g. "uniswap-v2"; advisory
	DEX string
}

// EdgeKind distinguishes same-chain swaps from cross-chain bridges.
type EdgeKind string

const (
	SwapEdge   EdgeKind = "swap"
	BridgeEdge EdgeKind = "bridge"
)

// Edge is a directed connection between two vertices. Swap edges stay on
// one chain and carry a pool (or a nominal fallback rate); bridge edges
// move the same symbol across chains and carry a fee and a latency.
// Edges are immutable once added to a graph.
type Edge struct {
	Kind EdgeKind
	From TokenKey
	To   TokenKey

	// Pool backs swap edges; nil for bridge edges and for swap edges that
	// only have a nominal rate
	Pool *LiquidityPool
	// NominalRate is the fallback output/input ratio used when no pool is
	// available or the AMM quote fails; 0 means no fallback
	NominalRate float64

	// BridgeFeeFraction is the fixed fee taken by the bridge, in [0, 1)
	BridgeFeeFraction float64
	// TimeDelaySeconds is the bridge settlement latency
	TimeDelaySeconds float64

	// GasCost in the source chain's native unit
	GasCost float64
	// ExecTimeMS is the estimated wall-clock execution time of this step
	ExecTimeMS float64
}
