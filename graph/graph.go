// Package graph holds the multi-chain token graph: vertices are
// (token, chain) pairs, edges are same-chain AMM swaps or cross-chain
// bridges. A Graph is built once, validated while it is built, and then
// treated as read-only by the solvers; sharing a built Graph between
// concurrent route queries is safe because nothing mutates it after
// construction.
package graph

import "fmt"

// MaxPoolFeeFraction is the highest swap fee a pool may declare (500 bp).
const MaxPoolFeeFraction = 0.05

// Graph maps each vertex to its ordered list of outgoing edges.
// Undirected semantics are emulated by the caller adding both directions;
// the graph itself treats every edge as directed.
type Graph struct {
	vertices  map[TokenKey]Token
	order     []TokenKey
	adjacency map[TokenKey][]*Edge
	edgeCount int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		vertices:  make(map[TokenKey]Token),
		adjacency: make(map[TokenKey][]*Edge),
	}
}

// AddVertex registers a token vertex. Adding the same key twice fails with
// ErrDuplicateVertex.
func (g *Graph) AddVertex(token Token) error {
	if _, exists := g.vertices[token.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateVertex, token.Key)
	}
	g.vertices[token.Key] = token
	g.order = append(g.order, token.Key)
	return nil
}

// AddEdge validates and appends a directed edge. Both endpoints must
// already be vertices. Swap edges must stay on one chain; bridge edges must
// move one symbol between two chains and never carry a pool. Parallel edges
// between the same ordered pair are permitted.
func (g *Graph) AddEdge(edge Edge) error {
	if edge.From == edge.To {
		return fmt.Errorf("%w: %s", ErrSelfLoop, edge.From)
	}
	if _, ok := g.vertices[edge.From]; !ok {
		return fmt.Errorf("%w: source %s", ErrDanglingEdge, edge.From)
	}
	if _, ok := g.vertices[edge.To]; !ok {
		return fmt.Errorf("%w: target %s", ErrDanglingEdge, edge.To)
	}

	switch edge.Kind {
	case SwapEdge:
		if edge.From.Chain != edge.To.Chain {
			return fmt.Errorf("%w: swap %s -> %s crosses chains", ErrInvalidPool, edge.From, edge.To)
		}
		if edge.Pool != nil {
			if err := validatePool(edge.Pool); err != nil {
				return fmt.Errorf("%w: %s -> %s: %v", ErrInvalidPool, edge.From, edge.To, err)
			}
		}
		if edge.NominalRate < 0 {
			return fmt.Errorf("%w: %s -> %s: negative nominal rate", ErrInvalidPool, edge.From, edge.To)
		}
	case BridgeEdge:
		if edge.From.Symbol != edge.To.Symbol {
			return fmt.Errorf("%w: bridge %s -> %s changes symbol", ErrInvalidBridge, edge.From, edge.To)
		}
		if edge.From.Chain == edge.To.Chain {
			return fmt.Errorf("%w: bridge %s -> %s stays on one chain", ErrInvalidBridge, edge.From, edge.To)
		}
		if edge.Pool != nil {
			return fmt.Errorf("%w: bridge %s -> %s carries a pool", ErrInvalidBridge, edge.From, edge.To)
		}
		if edge.BridgeFeeFraction < 0 || edge.BridgeFeeFraction >= 1 {
			return fmt.Errorf("%w: %s -> %s: fee %v out of [0,1)", ErrInvalidBridge, edge.From, edge.To, edge.BridgeFeeFraction)
		}
		if edge.TimeDelaySeconds < 0 {
			return fmt.Errorf("%w: %s -> %s: negative delay", ErrInvalidBridge, edge.From, edge.To)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEdgeKind, edge.Kind)
	}

	stored := edge
	g.adjacency[edge.From] = append(g.adjacency[edge.From], &stored)
	g.edgeCount++
	return nil
}

func validatePool(p *LiquidityPool) error {
	if !p.Kind.Valid() {
		return fmt.Errorf("unknown pool kind %q", p.Kind)
	}
	if p.ReserveBase < 0 || p.ReserveQuote < 0 {
		return fmt.Errorf("negative reserves %v/%v", p.ReserveBase, p.ReserveQuote)
	}
	if p.FeeFraction < 0 || p.FeeFraction > MaxPoolFeeFraction {
		return fmt.Errorf("fee %v out of [0,%v]", p.FeeFraction, MaxPoolFeeFraction)
	}
	if p.Amplification < 0 {
		return fmt.Errorf("negative amplification %v", p.Amplification)
	}
	return nil
}

// Neighbors returns the outgoing edges of key in insertion order. The slice
// is owned by the graph; callers must not modify it.
func (g *Graph) Neighbors(key TokenKey) []*Edge {
	return g.adjacency[key]
}

// Contains reports whether key is a vertex of the graph.
func (g *Graph) Contains(key TokenKey) bool {
	_, ok := g.vertices[key]
	return ok
}

// Token returns the vertex metadata for key.
func (g *Graph) Token(key TokenKey) (Token, bool) {
	t, ok := g.vertices[key]
	return t, ok
}

// Vertices returns all vertex keys in insertion order.
func (g *Graph) Vertices() []TokenKey {
	out := make([]TokenKey, len(g.order))
	copy(out, g.order)
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}
