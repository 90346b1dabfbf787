package models

// Severity grades a validation failure.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Failure codes reported by the route validator.
const (
	FailPoolUnavailable       = "pool_unavailable"
	FailInsufficientLiquidity = "insufficient_liquidity"
	FailExcessiveSlippage     = "excessive_slippage"
	FailGasTooHigh            = "gas_too_high"
	WarnLongDelay             = "long_delay"
)

// Failure is one validation check that a route did not pass.
// Recoverable failures can be cleared by the caller, typically by reducing
// the trade size; critical failures cannot.
type Failure struct {
	Code        string   `json:"code"`
	Severity    Severity `json:"severity"`
	Recoverable bool     `json:"recoverable"`
	Message     string   `json:"message"`
	// Step is the zero-based index of the route step, -1 for route-level
	// failures
	Step int `json:"step"`
}

// Warning is an advisory note that does not invalidate the route.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Step    int    `json:"step"`
}

// QualityMetrics are the validator's component scores, each in [0, 1].
type QualityMetrics struct {
	OutputEfficiency     float64 `json:"output_efficiency"`
	GasEfficiency        float64 `json:"gas_efficiency"`
	PriceImpactScore     float64 `json:"price_impact_score"`
	LiquidityScore       float64 `json:"liquidity_score"`
	DiversificationScore float64 `json:"diversification_score"`
	RiskScore            float64 `json:"risk_score"`
	TimeScore            float64 `json:"time_score"`
}

// Limits are the caller's budgets for a route.
type Limits struct {
	// MaxSlippage is the highest acceptable per-step price impact fraction
	MaxSlippage float64
	// MaxGasUSD is the highest acceptable per-step gas cost in USD
	MaxGasUSD float64
	// MaxTimeMS is the highest acceptable total execution time
	MaxTimeMS float64
}

// Validation is the validator's report on one route.
type Validation struct {
	IsValid bool `json:"is_valid"`
	// OverallScore is the weighted quality score on a 0-100 scale, rounded
	// to one decimal
	OverallScore float64        `json:"overall_score"`
	Failures     []Failure      `json:"failures"`
	Warnings     []Warning      `json:"warnings"`
	Metrics      QualityMetrics `json:"quality_metrics"`
}
