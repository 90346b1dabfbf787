// Package config carries the build-time options recognized by the routing
// core and a file loader for them. Options are plain values; nothing here
// touches the network.
package config

// AMMOptions tunes the pricing kernel.
type AMMOptions struct {
	// ActiveRangeFraction is the in-range share of concentrated-liquidity
	// reserves
	ActiveRangeFraction float64 `toml:"active_range_fraction" json:"active_range_fraction"`
	// DefaultStableA is the amplification coefficient for stable-swap
	// pools that do not declare one
	DefaultStableA float64 `toml:"default_stable_a" json:"default_stable_a"`
	// MaxTradeFraction caps a trade at this share of the input reserve
	MaxTradeFraction float64 `toml:"max_trade_fraction" json:"max_trade_fraction"`
}

// Options are the recognized build-time options of the routing core.
type Options struct {
	// GasNormalizer places gas costs on the same magnitude as log-rate
	// contributions; a convention, not a physical quantity
	GasNormalizer float64 `toml:"gas_normalizer" json:"gas_normalizer"`
	// BridgeTimeCoefficient converts bridge latency seconds into log-rate
	// units so faster bridges win at equal fee
	BridgeTimeCoefficient float64 `toml:"bridge_time_coefficient" json:"bridge_time_coefficient"`
	// DefaultMaxHops bounds route length when the caller does not choose
	DefaultMaxHops int `toml:"default_max_hops" json:"default_max_hops"`
	// ClassicThreshold is the vertex count below which algorithm selection
	// prefers the classic solver
	ClassicThreshold int        `toml:"classic_threshold" json:"classic_threshold"`
	AMM              AMMOptions `toml:"amm" json:"amm"`
}

// Default returns the conventional option values.
func Default() Options {
	return Options{
		GasNormalizer:         1e9,
		BridgeTimeCoefficient: 1e-5,
		DefaultMaxHops:        4,
		ClassicThreshold:      50,
		AMM: AMMOptions{
			ActiveRangeFraction: 0.30,
			DefaultStableA:      100,
			MaxTradeFraction:    0.90,
		},
	}
}
