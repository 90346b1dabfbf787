package graph

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var builderLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	builderLog = zerolog.New(out).With().Timestamp().Str("component", "graph-builder").Logger()
}

// The consumed contracts. Implementations live with the caller (oracle
// adapters, pool indexers, bridge SDKs); the core only sees already-fetched
// values and performs no I/O of its own. Each contract reports missing data
// with an error matching ErrUnavailable.

// PriceFeed resolves a token symbol to a USD price.
type PriceFeed interface {
	GetPrice(symbol string) (float64, error)
}

// PoolSource resolves a same-chain token pair to its deepest liquidity
// pool. ReserveBase must be denominated in tokenA, ReserveQuote in tokenB.
type PoolSource interface {
	GetPool(chain, tokenA, tokenB string) (*LiquidityPool, error)
}

// BridgeRoute describes one bridge lane for a symbol.
type BridgeRoute struct {
	FromChain        string
	ToChain          string
	FeeFraction      float64
	TimeDelaySeconds float64
	GasCost          float64
}

// BridgeSource lists the bridge lanes available for a symbol.
type BridgeSource interface {
	ListBridgeRoutes(symbol string) ([]BridgeRoute, error)
}

// AssembleOptions tunes the baked-in per-edge estimates that the sources do
// not provide themselves.
type AssembleOptions struct {
	// SwapGas is the gas cost stamped on every assembled swap edge, in the
	// chain's native unit
	SwapGas float64
	// SwapExecTimeMS is the estimated execution time for swap steps
	SwapExecTimeMS float64
	// BridgeExecTimeMS is the estimated execution time for bridge steps on
	// top of the bridge's own settlement delay
	BridgeExecTimeMS float64
}

// Assemble builds an immutable graph from a vertex list and the three
// consumed source contracts. For every same-chain token pair with an
// available pool it adds swap edges in both directions (reserves mirrored
// for the reverse direction); for every symbol it adds the bridge lanes
// whose endpoints are both present. Prices are baked into the vertices for
// the validator's use. Unavailable data is skipped, any other source error
// aborts the build.
func Assemble(
	tokens []Token,
	prices PriceFeed,
	pools PoolSource,
	bridges BridgeSource,
	opts AssembleOptions,
) (*Graph, error) {
	g := NewGraph()

	byChain := make(map[string][]Token)
	bySymbol := make(map[string][]Token)

	for _, token := range tokens {
		if prices != nil && token.PriceUSD == 0 {
			price, err := prices.GetPrice(token.Key.Symbol)
			switch {
			case err == nil:
				token.PriceUSD = price
			case errors.Is(err, ErrUnavailable):
				builderLog.Debug().Str("symbol", token.Key.Symbol).Msg("No price for token")
			default:
				return nil, fmt.Errorf("price feed failed for %s: %w", token.Key.Symbol, err)
			}
		}
		if err := g.AddVertex(token); err != nil {
			return nil, err
		}
		byChain[token.Key.Chain] = append(byChain[token.Key.Chain], token)
		bySymbol[token.Key.Symbol] = append(bySymbol[token.Key.Symbol], token)
	}

	if pools != nil {
		for chain, chainTokens := range byChain {
			for i := 0; i < len(chainTokens); i++ {
				for j := i + 1; j < len(chainTokens); j++ {
					a, b := chainTokens[i], chainTokens[j]
					pool, err := pools.GetPool(chain, a.Key.Symbol, b.Key.Symbol)
					if errors.Is(err, ErrUnavailable) {
						continue
					}
					if err != nil {
						return nil, fmt.Errorf("pool source failed for %s/%s on %s: %w", a.Key.Symbol, b.Key.Symbol, chain, err)
					}
					if err := addSwapPair(g, a.Key, b.Key, pool, opts); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if bridges != nil {
		for symbol, symTokens := range bySymbol {
			if len(symTokens) < 2 {
				continue
			}
			lanes, err := bridges.ListBridgeRoutes(symbol)
			if errors.Is(err, ErrUnavailable) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("bridge source failed for %s: %w", symbol, err)
			}
			for _, lane := range lanes {
				from := TokenKey{Symbol: symbol, Chain: lane.FromChain}
				to := TokenKey{Symbol: symbol, Chain: lane.ToChain}
				if !g.Contains(from) || !g.Contains(to) {
					continue
				}
				err := g.AddEdge(Edge{
					Kind:              BridgeEdge,
					From:              from,
					To:                to,
					BridgeFeeFraction: lane.FeeFraction,
					TimeDelaySeconds:  lane.TimeDelaySeconds,
					GasCost:           lane.GasCost,
					ExecTimeMS:        lane.TimeDelaySeconds*1000 + opts.BridgeExecTimeMS,
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}

	builderLog.Info().
		Int("vertices", g.VertexCount()).
		Int("edges", g.EdgeCount()).
		Msg("Assembled routing graph")
	return g, nil
}

func addSwapPair(g *Graph, a, b TokenKey, pool *LiquidityPool, opts AssembleOptions) error {
	forward := *pool
	err := g.AddEdge(Edge{
		Kind:       SwapEdge,
		From:       a,
		To:         b,
		Pool:       &forward,
		GasCost:    opts.SwapGas,
		ExecTimeMS: opts.SwapExecTimeMS,
	})
	if err != nil {
		return err
	}

	reverse := *pool
	reverse.ReserveBase, reverse.ReserveQuote = pool.ReserveQuote, pool.ReserveBase
	return g.AddEdge(Edge{
		Kind:       SwapEdge,
		From:       b,
		To:         a,
		Pool:       &reverse,
		GasCost:    opts.SwapGas,
		ExecTimeMS: opts.SwapExecTimeMS,
	})
}
