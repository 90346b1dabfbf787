// Package models holds the result and report types exchanged with callers,
// and their stable JSON forms used for golden-file testing.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/meridian-labs/chainroute/graph"
)

// Step is one edge traversal of a route, with the amounts entering and
// leaving it and the weight it contributed to the total.
type Step struct {
	From         graph.TokenKey
	To           graph.TokenKey
	Edge         *graph.Edge
	Weight       float64
	InputAmount  float64
	OutputAmount float64
}

// RouteResult is the outcome of one solve: the vertex path from source to
// target, the steps between consecutive vertices, the summed edge weight
// and the final estimated output at the target. Results are produced per
// query and not retained by the core.
type RouteResult struct {
	Path            []graph.TokenKey
	Steps           []Step
	TotalWeight     float64
	EstimatedOutput float64
}

// Hops returns the number of edge traversals in the route.
func (r *RouteResult) Hops() int {
	return len(r.Steps)
}

type stepJSON struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	Kind         string          `json:"kind"`
	Weight       float64         `json:"weight"`
	InputAmount  float64         `json:"input_amount"`
	OutputAmount float64         `json:"output_amount"`
	Edge         json.RawMessage `json:"edge"`
}

type routeResultJSON struct {
	Path            []string   `json:"path"`
	TotalWeight     float64    `json:"total_weight"`
	EstimatedOutput float64    `json:"estimated_output"`
	Steps           []stepJSON `json:"steps"`
}

// MarshalJSON serializes the result in its stable wire form. Each step
// embeds its edge in the same shape the graph serializes edges with.
func (r *RouteResult) MarshalJSON() ([]byte, error) {
	wire := routeResultJSON{
		Path:            make([]string, 0, len(r.Path)),
		TotalWeight:     r.TotalWeight,
		EstimatedOutput: r.EstimatedOutput,
		Steps:           make([]stepJSON, 0, len(r.Steps)),
	}
	for _, key := range r.Path {
		wire.Path = append(wire.Path, key.String())
	}
	for i, step := range r.Steps {
		if step.Edge == nil {
			return nil, fmt.Errorf("route step %d carries no edge", i)
		}
		edgeWire, err := json.Marshal(step.Edge)
		if err != nil {
			return nil, err
		}
		wire.Steps = append(wire.Steps, stepJSON{
			From:         step.From.String(),
			To:           step.To.String(),
			Kind:         string(step.Edge.Kind),
			Weight:       step.Weight,
			InputAmount:  step.InputAmount,
			OutputAmount: step.OutputAmount,
			Edge:         edgeWire,
		})
	}
	return json.Marshal(wire)
}
