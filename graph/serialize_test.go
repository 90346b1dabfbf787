package graph_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/chainroute/graph"
)

func buildSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	seedVertices(t, g, usdcEth, wethEth, usdcPoly)

	require.NoError(t, g.AddEdge(graph.Edge{
		Kind: graph.SwapEdge,
		From: usdcEth,
		To:   wethEth,
		Pool: &graph.LiquidityPool{
			ReserveBase:  5_000_000,
			ReserveQuote: 1500,
			LiquidityUSD: 10_000_000,
			FeeFraction:  0.003,
			Kind:         graph.ConstantProduct,
			DEX:          "uniswap-v2",
		},
		GasCost:    120_000,
		ExecTimeMS: 15_000,
	}))
	require.NoError(t, g.AddEdge(graph.Edge{
		Kind:              graph.BridgeEdge,
		From:              usdcEth,
		To:                usdcPoly,
		BridgeFeeFraction: 0.001,
		TimeDelaySeconds:  120,
		GasCost:           80_000,
		ExecTimeMS:        125_000,
	}))
	return g
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var restored graph.Graph
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, g.VertexCount(), restored.VertexCount())
	require.Equal(t, g.EdgeCount(), restored.EdgeCount())

	edges := restored.Neighbors(usdcEth)
	require.Len(t, edges, 2)

	swap := edges[0]
	require.Equal(t, graph.SwapEdge, swap.Kind)
	require.Equal(t, wethEth, swap.To)
	require.NotNil(t, swap.Pool)
	require.Equal(t, graph.ConstantProduct, swap.Pool.Kind)
	require.Equal(t, 5_000_000.0, swap.Pool.ReserveBase)
	require.Equal(t, 0.003, swap.Pool.FeeFraction)
	require.Equal(t, "uniswap-v2", swap.Pool.DEX)

	bridge := edges[1]
	require.Equal(t, graph.BridgeEdge, bridge.Kind)
	require.Nil(t, bridge.Pool)
	require.Equal(t, 0.001, bridge.BridgeFeeFraction)
	require.Equal(t, 120.0, bridge.TimeDelaySeconds)
}

func TestGraph_UnmarshalRunsBuilderValidation(t *testing.T) {
	// the edge target is not among the object's keys
	dangling := `{"USDC.ethereum": [{"kind": "swap", "target": "WETH.ethereum", "rate": 0.5, "gas": 0}]}`
	var g graph.Graph
	err := json.Unmarshal([]byte(dangling), &g)
	require.ErrorIs(t, err, graph.ErrDanglingEdge)

	crossChainSwap := `{
		"USDC.ethereum": [{"kind": "swap", "target": "USDC.polygon", "rate": 1, "gas": 0}],
		"USDC.polygon": []
	}`
	err = json.Unmarshal([]byte(crossChainSwap), &g)
	require.ErrorIs(t, err, graph.ErrInvalidPool)
}

func TestLoadFile_JSON(t *testing.T) {
	doc := `{
		"USDC.ethereum": [
			{"kind": "swap", "target": "WETH.ethereum", "gas": 100000,
			 "liquidity": {"reserve_base": 1000, "reserve_quote": 1000, "liquidity_usd": 2000,
			               "fee_percent": 0.003, "pool_type": "constant_product"}},
			{"kind": "bridge", "target": "USDC.polygon", "bridge_fee": 0.001, "time_delay": 120, "gas": 50000}
		],
		"WETH.ethereum": [],
		"USDC.polygon": []
	}`
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	g, err := graph.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, g.VertexCount())
	require.Equal(t, 2, g.EdgeCount())

	edges := g.Neighbors(usdcEth)
	require.Len(t, edges, 2)
	require.Equal(t, graph.ConstantProduct, edges[0].Pool.Kind)
	require.Equal(t, 0.001, edges[1].BridgeFeeFraction)
}

func TestLoadFile_TOML(t *testing.T) {
	doc := `
"WETH.ethereum" = []

[["USDC.ethereum"]]
kind = "swap"
target = "WETH.ethereum"
gas = 100000.0
liquidity = { reserve_base = 1000.0, reserve_quote = 1000.0, liquidity_usd = 2000.0, fee_percent = 0.003, pool_type = "constant_product" }
`
	path := filepath.Join(t.TempDir(), "graph.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	g, err := graph.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, g.VertexCount())
	require.Equal(t, 1, g.EdgeCount())
	require.Equal(t, 1000.0, g.Neighbors(usdcEth)[0].Pool.ReserveBase)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := graph.LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
