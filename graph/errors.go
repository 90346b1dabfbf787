package graph

import "errors"

// Builder validation errors. All of them are fatal for graph construction;
// a graph that built successfully never surfaces them to a solver.
var (
	// ErrDuplicateVertex is returned when a vertex key is added twice.
	ErrDuplicateVertex = errors.New("graph: duplicate vertex")
	// ErrSelfLoop is returned for an edge whose source and target are the
	// same vertex.
	ErrSelfLoop = errors.New("graph: self-loop edge")
	// ErrDanglingEdge is returned when an edge endpoint does not resolve to
	// a vertex in the graph.
	ErrDanglingEdge = errors.New("graph: edge endpoint not in graph")
	// ErrInvalidPool is returned for a swap edge with malformed pool state.
	ErrInvalidPool = errors.New("graph: invalid liquidity pool")
	// ErrInvalidBridge is returned for a malformed bridge edge.
	ErrInvalidBridge = errors.New("graph: invalid bridge edge")
	// ErrUnknownEdgeKind is returned for an edge that is neither a swap nor
	// a bridge.
	ErrUnknownEdgeKind = errors.New("graph: unknown edge kind")
)

// ErrUnavailable is returned by the consumed source contracts (price feed,
// pool source, bridge descriptor source) when they have no data for a query.
var ErrUnavailable = errors.New("graph: source data unavailable")
