package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/models"
)

func TestRouteResult_MarshalJSON(t *testing.T) {
	a := graph.TokenKey{Symbol: "USDC", Chain: "ethereum"}
	b := graph.TokenKey{Symbol: "USDC", Chain: "polygon"}

	route := &models.RouteResult{
		Path: []graph.TokenKey{a, b},
		Steps: []models.Step{{
			From: a,
			To:   b,
			Edge: &graph.Edge{
				Kind:              graph.BridgeEdge,
				From:              a,
				To:                b,
				BridgeFeeFraction: 0.001,
				TimeDelaySeconds:  120,
				GasCost:           50_000,
			},
			Weight:       -math.Log(0.999) + 120*1e-5,
			InputAmount:  1000,
			OutputAmount: 999,
		}},
		TotalWeight:     -math.Log(0.999) + 120*1e-5,
		EstimatedOutput: 999,
	}

	data, err := json.Marshal(route)
	require.NoError(t, err)

	var wire struct {
		Path            []string `json:"path"`
		TotalWeight     float64  `json:"total_weight"`
		EstimatedOutput float64  `json:"estimated_output"`
		Steps           []struct {
			From         string  `json:"from"`
			To           string  `json:"to"`
			Kind         string  `json:"kind"`
			Weight       float64 `json:"weight"`
			InputAmount  float64 `json:"input_amount"`
			OutputAmount float64 `json:"output_amount"`
			Edge         struct {
				Kind      string  `json:"kind"`
				Target    string  `json:"target"`
				BridgeFee float64 `json:"bridge_fee"`
				TimeDelay float64 `json:"time_delay"`
				Gas       float64 `json:"gas"`
			} `json:"edge"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))

	require.Equal(t, []string{"USDC.ethereum", "USDC.polygon"}, wire.Path)
	require.Equal(t, 999.0, wire.EstimatedOutput)
	require.Len(t, wire.Steps, 1)

	step := wire.Steps[0]
	require.Equal(t, "USDC.ethereum", step.From)
	require.Equal(t, "USDC.polygon", step.To)
	require.Equal(t, "bridge", step.Kind)
	require.Equal(t, 1000.0, step.InputAmount)
	require.Equal(t, 999.0, step.OutputAmount)

	require.Equal(t, "bridge", step.Edge.Kind)
	require.Equal(t, "USDC.polygon", step.Edge.Target)
	require.Equal(t, 0.001, step.Edge.BridgeFee)
	require.Equal(t, 120.0, step.Edge.TimeDelay)
	require.Equal(t, 50_000.0, step.Edge.Gas)
}

func TestRouteResult_MarshalJSON_RejectsEdgelessStep(t *testing.T) {
	a := graph.TokenKey{Symbol: "A", Chain: "ethereum"}
	b := graph.TokenKey{Symbol: "B", Chain: "ethereum"}

	route := &models.RouteResult{
		Path:  []graph.TokenKey{a, b},
		Steps: []models.Step{{From: a, To: b}},
	}

	_, err := json.Marshal(route)
	require.Error(t, err)
	require.Contains(t, err.Error(), "carries no edge")
}

func TestRouteResult_Hops(t *testing.T) {
	a := graph.TokenKey{Symbol: "A", Chain: "ethereum"}

	trivial := &models.RouteResult{Path: []graph.TokenKey{a}}
	require.Equal(t, 0, trivial.Hops())
}
