package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/chainroute/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	opts := config.Default()
	require.Equal(t, 1e9, opts.GasNormalizer)
	require.Equal(t, 1e-5, opts.BridgeTimeCoefficient)
	require.Equal(t, 4, opts.DefaultMaxHops)
	require.Equal(t, 50, opts.ClassicThreshold)
	require.Equal(t, 0.30, opts.AMM.ActiveRangeFraction)
	require.Equal(t, 100.0, opts.AMM.DefaultStableA)
	require.Equal(t, 0.90, opts.AMM.MaxTradeFraction)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "options.toml", `
gas_normalizer = 2e9
default_max_hops = 6

[amm]
active_range_fraction = 0.5
`)

	opts, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2e9, opts.GasNormalizer)
	require.Equal(t, 6, opts.DefaultMaxHops)
	require.Equal(t, 0.5, opts.AMM.ActiveRangeFraction)

	// absent fields keep defaults
	require.Equal(t, 1e-5, opts.BridgeTimeCoefficient)
	require.Equal(t, 100.0, opts.AMM.DefaultStableA)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "options.json", `{
		"bridge_time_coefficient": 2e-5,
		"amm": {"max_trade_fraction": 0.5}
	}`)

	opts, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2e-5, opts.BridgeTimeCoefficient)
	require.Equal(t, 0.5, opts.AMM.MaxTradeFraction)
	require.Equal(t, 1e9, opts.GasNormalizer)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"gas.toml":  "gas_normalizer = -1.0",
		"hops.toml": "default_max_hops = 0",
		"amm.toml":  "[amm]\nactive_range_fraction = 1.5",
	} {
		path := writeFile(t, name, content)
		_, err := config.Load(path)
		require.Error(t, err, "file %s should not validate", name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeFile(t, "broken.toml", "gas_normalizer = [not closed")
	_, err := config.Load(path)
	require.Error(t, err)
}
