package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads options from a TOML or JSON file, selected by suffix.
// Fields absent from the file keep their default values.
func Load(filePath string) (Options, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options file: %w", err)
	}

	opts := Default()
	if strings.HasSuffix(filePath, ".json") {
		if err := json.Unmarshal(data, &opts); err != nil {
			return Options{}, fmt.Errorf("failed to parse JSON options: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &opts); err != nil {
			return Options{}, fmt.Errorf("failed to parse TOML options: %w", err)
		}
	}

	if err := validate(opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func validate(opts Options) error {
	if opts.GasNormalizer <= 0 {
		return fmt.Errorf("gas_normalizer must be positive, got %v", opts.GasNormalizer)
	}
	if opts.BridgeTimeCoefficient < 0 {
		return fmt.Errorf("bridge_time_coefficient must be non-negative, got %v", opts.BridgeTimeCoefficient)
	}
	if opts.DefaultMaxHops < 1 {
		return fmt.Errorf("default_max_hops must be at least 1, got %d", opts.DefaultMaxHops)
	}
	if opts.AMM.ActiveRangeFraction <= 0 || opts.AMM.ActiveRangeFraction > 1 {
		return fmt.Errorf("amm.active_range_fraction must be in (0,1], got %v", opts.AMM.ActiveRangeFraction)
	}
	if opts.AMM.DefaultStableA <= 0 {
		return fmt.Errorf("amm.default_stable_a must be positive, got %v", opts.AMM.DefaultStableA)
	}
	if opts.AMM.MaxTradeFraction <= 0 || opts.AMM.MaxTradeFraction > 1 {
		return fmt.Errorf("amm.max_trade_fraction must be in (0,1], got %v", opts.AMM.MaxTradeFraction)
	}
	return nil
}
