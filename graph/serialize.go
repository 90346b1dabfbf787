package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Serialized graph form: an object mapping each vertex key ("SYMBOL.chain")
// to the array of its outgoing edges. This shape is stable surface for
// golden-file testing.

type edgeJSON struct {
	Kind       string         `json:"kind" toml:"kind"`
	Target     string         `json:"target" toml:"target"`
	Rate       float64        `json:"rate,omitempty" toml:"rate,omitempty"`
	Gas        float64        `json:"gas" toml:"gas"`
	BridgeFee  float64        `json:"bridge_fee,omitempty" toml:"bridge_fee,omitempty"`
	TimeDelay  float64        `json:"time_delay,omitempty" toml:"time_delay,omitempty"`
	ExecTimeMS float64        `json:"exec_time_ms,omitempty" toml:"exec_time_ms,omitempty"`
	Liquidity  *liquidityJSON `json:"liquidity,omitempty" toml:"liquidity,omitempty"`
}

type liquidityJSON struct {
	ReserveBase   float64 `json:"reserve_base" toml:"reserve_base"`
	ReserveQuote  float64 `json:"reserve_quote" toml:"reserve_quote"`
	LiquidityUSD  float64 `json:"liquidity_usd" toml:"liquidity_usd"`
	FeePercent    float64 `json:"fee_percent" toml:"fee_percent"`
	PoolType      string  `json:"pool_type" toml:"pool_type"`
	Amplification float64 `json:"amplification,omitempty" toml:"amplification,omitempty"`
	Volume24h     float64 `json:"volume_24h,omitempty" toml:"volume_24h,omitempty"`
	DEX           string  `json:"dex,omitempty" toml:"dex,omitempty"`
}

func (e *Edge) toWire() edgeJSON {
	wire := edgeJSON{
		Kind:       string(e.Kind),
		Target:     e.To.String(),
		Rate:       e.NominalRate,
		Gas:        e.GasCost,
		BridgeFee:  e.BridgeFeeFraction,
		TimeDelay:  e.TimeDelaySeconds,
		ExecTimeMS: e.ExecTimeMS,
	}
	if e.Pool != nil {
		wire.Liquidity = &liquidityJSON{
			ReserveBase:   e.Pool.ReserveBase,
			ReserveQuote:  e.Pool.ReserveQuote,
			LiquidityUSD:  e.Pool.LiquidityUSD,
			FeePercent:    e.Pool.FeeFraction,
			PoolType:      string(e.Pool.Kind),
			Amplification: e.Pool.Amplification,
			Volume24h:     e.Pool.Volume24h,
			DEX:           e.Pool.DEX,
		}
	}
	return wire
}

func edgeFromWire(from TokenKey, wire edgeJSON) (Edge, error) {
	target, err := ParseTokenKey(wire.Target)
	if err != nil {
		return Edge{}, fmt.Errorf("edge from %s: %w", from, err)
	}
	edge := Edge{
		Kind:              EdgeKind(wire.Kind),
		From:              from,
		To:                target,
		NominalRate:       wire.Rate,
		BridgeFeeFraction: wire.BridgeFee,
		TimeDelaySeconds:  wire.TimeDelay,
		GasCost:           wire.Gas,
		ExecTimeMS:        wire.ExecTimeMS,
	}
	if wire.Liquidity != nil {
		edge.Pool = &LiquidityPool{
			ReserveBase:   wire.Liquidity.ReserveBase,
			ReserveQuote:  wire.Liquidity.ReserveQuote,
			LiquidityUSD:  wire.Liquidity.LiquidityUSD,
			FeeFraction:   wire.Liquidity.FeePercent,
			Kind:          PoolKind(wire.Liquidity.PoolType),
			Amplification: wire.Liquidity.Amplification,
			Volume24h:     wire.Liquidity.Volume24h,
			DEX:           wire.Liquidity.DEX,
		}
	}
	return edge, nil
}

// MarshalJSON serializes one edge in the same wire shape the graph embeds
// it with.
func (e *Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toWire())
}

// MarshalJSON serializes the graph as a vertex-key to edge-list object.
func (g *Graph) MarshalJSON() ([]byte, error) {
	wire := make(map[string][]edgeJSON, len(g.order))
	for _, key := range g.order {
		edges := g.adjacency[key]
		list := make([]edgeJSON, 0, len(edges))
		for _, e := range edges {
			list = append(list, e.toWire())
		}
		wire[key.String()] = list
	}
	return json.Marshal(wire)
}

// UnmarshalJSON rebuilds a graph from its serialized form, running the full
// builder validation. Vertices are exactly the object's keys; an edge whose
// target is not among them fails with ErrDanglingEdge.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var wire map[string][]edgeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	return g.fromWire(wire)
}

func (g *Graph) fromWire(wire map[string][]edgeJSON) error {
	fresh := NewGraph()

	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		key, err := ParseTokenKey(raw)
		if err != nil {
			return err
		}
		if err := fresh.AddVertex(Token{Key: key}); err != nil {
			return err
		}
	}
	for _, raw := range keys {
		from, _ := ParseTokenKey(raw)
		for _, ew := range wire[raw] {
			edge, err := edgeFromWire(from, ew)
			if err != nil {
				return err
			}
			if err := fresh.AddEdge(edge); err != nil {
				return err
			}
		}
	}

	*g = *fresh
	return nil
}

// LoadFile reads a serialized graph from a JSON or TOML file, selected by
// suffix, and rebuilds it through the validating builder.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var wire map[string][]edgeJSON
	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to parse TOML graph: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to parse JSON graph: %w", err)
		}
	}

	g := NewGraph()
	if err := g.fromWire(wire); err != nil {
		return nil, err
	}
	return g, nil
}
