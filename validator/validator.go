// Package validator post-processes a solved route into a quality report.
// It re-runs the pool math step by step instead of trusting the solver's
// per-step outputs, so it doubles as the contract boundary at which the
// solver's arithmetic is checked.
package validator

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meridian-labs/chainroute/amm"
	"github.com/meridian-labs/chainroute/graph"
	"github.com/meridian-labs/chainroute/models"
)

var validatorLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	validatorLog = zerolog.New(out).With().Timestamp().Str("component", "validator").Logger()
}

// Gas costs ride on edges in gwei-style units, 1e9 per native token.
const gasUnitsPerNative = 1e9

// Liquidity consumption thresholds as fractions of the pool's base reserve.
const (
	liquidityCriticalFraction = 0.30
	liquidityWarnFraction     = 0.10
)

// Metric weights for the overall score. The values are part of the report
// contract and must not drift, or recorded scores stop being comparable.
const (
	weightOutputEfficiency = 0.35
	weightGasEfficiency    = 0.15
	weightPriceImpact      = 0.25
	weightLiquidity        = 0.10
	weightDiversification  = 0.05
	weightRisk             = 0.05
	weightTime             = 0.05
)

// Validator checks solved routes against caller budgets and scores them.
// The zero value is not usable; construct with New.
type Validator struct {
	params amm.Params
}

// New creates a validator pricing pools with the given kernel parameters.
// These must match the parameters the router solved with, otherwise the
// recomputed outputs diverge from the route's.
func New(params amm.Params) *Validator {
	return &Validator{params: params}
}

// Validate replays the route with the given input amount, collects
// failures and warnings against the limits, and scores the route 0 to 100.
// nativePriceUSD converts per-step gas to USD. A limit of zero or less is
// treated as unbounded. Quality problems never surface as errors; they are
// reported in the returned struct.
func (v *Validator) Validate(route *models.RouteResult, amount, nativePriceUSD float64, limits models.Limits) models.Validation {
	var (
		failures []models.Failure
		warnings []models.Warning

		running         = amount
		theoretical     = amount
		totalSlippage   float64
		totalGasUSD     float64
		totalTimeMS     float64
		bridgeCount     int
		poolDepthSum    float64
		pooledStepCount int
		dexes           = map[string]bool{}
	)

	for i, step := range route.Steps {
		e := step.Edge
		if e == nil {
			failures = append(failures, models.Failure{
				Code:        models.FailPoolUnavailable,
				Severity:    models.SeverityCritical,
				Recoverable: false,
				Message:     fmt.Sprintf("step %d carries no edge", i),
				Step:        i,
			})
			continue
		}

		gasUSD := e.GasCost / gasUnitsPerNative * nativePriceUSD
		totalGasUSD += gasUSD
		totalTimeMS += e.ExecTimeMS

		if limits.MaxGasUSD > 0 {
			switch {
			case gasUSD > limits.MaxGasUSD:
				failures = append(failures, models.Failure{
					Code:        models.FailGasTooHigh,
					Severity:    models.SeverityMedium,
					Recoverable: true,
					Message:     fmt.Sprintf("step %d gas $%.4f exceeds limit $%.4f", i, gasUSD, limits.MaxGasUSD),
					Step:        i,
				})
			case gasUSD >= 0.5*limits.MaxGasUSD:
				warnings = append(warnings, models.Warning{
					Code:    models.FailGasTooHigh,
					Message: fmt.Sprintf("step %d gas $%.4f is over half the limit", i, gasUSD),
					Step:    i,
				})
			}
		}

		switch e.Kind {
		case graph.BridgeEdge:
			bridgeCount++
			running *= 1 - e.BridgeFeeFraction
			theoretical *= 1 - e.BridgeFeeFraction

		case graph.SwapEdge:
			running, theoretical = v.checkSwap(i, e, running, theoretical, limits, &failures, &warnings, &totalSlippage)
			if e.Pool != nil {
				poolDepthSum += e.Pool.LiquidityUSD
				pooledStepCount++
				if e.Pool.DEX != "" {
					dexes[e.Pool.DEX] = true
				}
			}

		default:
			failures = append(failures, models.Failure{
				Code:        models.FailPoolUnavailable,
				Severity:    models.SeverityCritical,
				Recoverable: false,
				Message:     fmt.Sprintf("step %d has unknown edge kind %q", i, e.Kind),
				Step:        i,
			})
		}
	}

	if limits.MaxTimeMS > 0 && totalTimeMS > limits.MaxTimeMS {
		warnings = append(warnings, models.Warning{
			Code:    models.WarnLongDelay,
			Message: fmt.Sprintf("total execution time %.0fms exceeds limit %.0fms", totalTimeMS, limits.MaxTimeMS),
			Step:    -1,
		})
	}

	avgPoolDepth := 0.0
	if pooledStepCount > 0 {
		avgPoolDepth = poolDepthSum / float64(pooledStepCount)
	}

	metrics := v.scoreMetrics(scoreInputs{
		finalOutput:   running,
		theoretical:   theoretical,
		totalSlippage: totalSlippage,
		totalGasUSD:   totalGasUSD,
		totalTimeMS:   totalTimeMS,
		avgPoolDepth:  avgPoolDepth,
		dexCount:      len(dexes),
		bridgeCount:   bridgeCount,
	})

	isValid := true
	for _, f := range failures {
		if f.Severity == models.SeverityCritical {
			isValid = false
			break
		}
	}

	report := models.Validation{
		IsValid:      isValid,
		OverallScore: overallScore(metrics),
		Failures:     failures,
		Warnings:     warnings,
		Metrics:      metrics,
	}
	validatorLog.Debug().
		Bool("valid", report.IsValid).
		Float64("score", report.OverallScore).
		Int("failures", len(failures)).
		Int("warnings", len(warnings)).
		Msg("Route validated")
	return report
}

// checkSwap replays one swap step and returns the updated running and
// theoretical amounts.
func (v *Validator) checkSwap(i int, e *graph.Edge, running, theoretical float64, limits models.Limits,
	failures *[]models.Failure, warnings *[]models.Warning, totalSlippage *float64) (float64, float64) {

	if e.Pool == nil {
		if e.NominalRate > 0 {
			return running * e.NominalRate, theoretical * e.NominalRate
		}
		*failures = append(*failures, models.Failure{
			Code:        models.FailPoolUnavailable,
			Severity:    models.SeverityCritical,
			Recoverable: false,
			Message:     fmt.Sprintf("step %d has neither a pool nor a nominal rate", i),
			Step:        i,
		})
		return running, theoretical
	}

	pool := e.Pool
	switch {
	case running > liquidityCriticalFraction*pool.ReserveBase:
		*failures = append(*failures, models.Failure{
			Code:        models.FailInsufficientLiquidity,
			Severity:    models.SeverityCritical,
			Recoverable: false,
			Message: fmt.Sprintf("step %d consumes %.1f%% of the base reserve",
				i, 100*running/pool.ReserveBase),
			Step: i,
		})
	case running > liquidityWarnFraction*pool.ReserveBase:
		*warnings = append(*warnings, models.Warning{
			Code: models.FailInsufficientLiquidity,
			Message: fmt.Sprintf("step %d consumes %.1f%% of the base reserve",
				i, 100*running/pool.ReserveBase),
			Step: i,
		})
	}

	quote, err := amm.PoolQuote(pool, running, v.params)
	if err != nil {
		if e.NominalRate > 0 {
			return running * e.NominalRate, theoretical * e.NominalRate
		}
		*failures = append(*failures, models.Failure{
			Code:        models.FailPoolUnavailable,
			Severity:    models.SeverityCritical,
			Recoverable: false,
			Message:     fmt.Sprintf("step %d pool quote failed: %v", i, err),
			Step:        i,
		})
		return running, theoretical
	}

	*totalSlippage += quote.PriceImpact
	if limits.MaxSlippage > 0 {
		switch {
		case quote.PriceImpact > limits.MaxSlippage:
			*failures = append(*failures, models.Failure{
				Code:        models.FailExcessiveSlippage,
				Severity:    models.SeverityHigh,
				Recoverable: true,
				Message: fmt.Sprintf("step %d price impact %.4f exceeds limit %.4f",
					i, quote.PriceImpact, limits.MaxSlippage),
				Step: i,
			})
		case quote.PriceImpact >= 0.5*limits.MaxSlippage:
			*warnings = append(*warnings, models.Warning{
				Code:    models.FailExcessiveSlippage,
				Message: fmt.Sprintf("step %d price impact %.4f is over half the limit", i, quote.PriceImpact),
				Step:    i,
			})
		}
	}

	spot, spotErr := amm.SpotRate(pool, v.params)
	if spotErr != nil {
		spot = quote.EffectiveRate
	}
	return quote.OutputAmount, theoretical * spot
}

type scoreInputs struct {
	finalOutput   float64
	theoretical   float64
	totalSlippage float64
	totalGasUSD   float64
	totalTimeMS   float64
	avgPoolDepth  float64
	dexCount      int
	bridgeCount   int
}

func (v *Validator) scoreMetrics(in scoreInputs) models.QualityMetrics {
	outputEfficiency := 0.0
	if in.theoretical > 0 {
		outputEfficiency = clamp01(in.finalOutput / in.theoretical)
	}

	gasEfficiency := 1.0
	if in.totalGasUSD > 0 {
		gasEfficiency = math.Min(100, in.finalOutput/in.totalGasUSD) / 100
	}

	liquidityScore := math.Min(1, math.Log10(in.avgPoolDepth+1)/6)

	return models.QualityMetrics{
		OutputEfficiency:     outputEfficiency,
		GasEfficiency:        gasEfficiency,
		PriceImpactScore:     math.Max(0, 1-in.totalSlippage),
		LiquidityScore:       liquidityScore,
		DiversificationScore: math.Min(1, float64(in.dexCount)/3),
		RiskScore:            math.Max(0, 1-(float64(in.bridgeCount)*0.2+(1-liquidityScore)*0.3)),
		TimeScore:            math.Max(0, 1-in.totalTimeMS/600_000),
	}
}

// overallScore is the weighted metric sum on a 0-100 scale, rounded to one
// decimal through decimal arithmetic so equal inputs always round the same
// way.
func overallScore(m models.QualityMetrics) float64 {
	raw := weightOutputEfficiency*m.OutputEfficiency +
		weightGasEfficiency*m.GasEfficiency +
		weightPriceImpact*m.PriceImpactScore +
		weightLiquidity*m.LiquidityScore +
		weightDiversification*m.DiversificationScore +
		weightRisk*m.RiskScore +
		weightTime*m.TimeScore

	score := decimal.NewFromFloat(raw * 100).Round(1)
	f, _ := score.Float64()
	return f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
