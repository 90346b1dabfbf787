package validator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const bpsDenominator = 10_000

// MinOutput computes the minimum acceptable output for an expected amount
// under a slippage tolerance in basis points (100 bps = 1%).
// minOutput = expected * (10000 - slippageBps) / 10000, computed in
// decimal arithmetic so string amounts round-trip without float drift.
func MinOutput(expectedOutput string, slippageBps uint32) (string, error) {
	if slippageBps > bpsDenominator {
		return "", fmt.Errorf("slippage %d bps exceeds 100%%", slippageBps)
	}
	expected, err := decimal.NewFromString(expectedOutput)
	if err != nil {
		return "", fmt.Errorf("failed to parse expected output: %w", err)
	}

	factor := decimal.NewFromInt(int64(bpsDenominator - slippageBps)).
		Div(decimal.NewFromInt(bpsDenominator))
	return expected.Mul(factor).String(), nil
}
