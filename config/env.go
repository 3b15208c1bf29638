package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every override variable.
const EnvPrefix = "TRADEX_"

// Load builds the effective configuration: defaults, then the file at path
// (skipped when path is empty), then TRADEX_* environment overrides. A .env
// file in the working directory is read first if present. The result is
// validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overwrites fields whose TRADEX_* variable is set and parses.
func (c *Config) ApplyEnv() {
	setStr(&c.Account.ID, "ACCOUNT_ID")
	setStr(&c.Account.Currency, "ACCOUNT_CURRENCY")
	setFloat64(&c.Account.InitialCash, "INITIAL_CASH")

	setFloat64(&c.Execution.CommissionRate, "COMMISSION_RATE")
	setBool(&c.Execution.LeverageAllowed, "LEVERAGE_ALLOWED")
	setFloat64(&c.Execution.MaxLeverage, "MAX_LEVERAGE")

	setFloat64(&c.Risk.MaxDrawdown, "MAX_DRAWDOWN")
	setStringSlice(&c.Risk.RestrictedAssets, "RESTRICTED_ASSETS")

	setFloat64(&c.Compliance.CorruptionThreshold, "CORRUPTION_THRESHOLD")
	setFloat64(&c.Compliance.ESGThreshold, "ESG_THRESHOLD")
	setStringSlice(&c.Compliance.BlockedSegments, "BLOCKED_SEGMENTS")

	setStr(&c.Mimicry.Profile, "MIMICRY_PROFILE")

	setStr(&c.Data.BarsFile, "BARS_FILE")
	setStringSlice(&c.Data.Assets, "ASSETS")

	setStr(&c.Journal.Type, "JOURNAL_TYPE")
	setStr(&c.Journal.DBPath, "JOURNAL_DB_PATH")

	setStr(&c.Events.Type, "EVENTS_TYPE")
	setStr(&c.Events.RedisAddr, "REDIS_ADDR")
	setStr(&c.Events.RedisPassword, "REDIS_PASSWORD")
	setInt(&c.Events.RedisDB, "REDIS_DB")
	setBool(&c.Events.RedisTLS, "REDIS_TLS")

	setStr(&c.Metrics.Addr, "METRICS_ADDR")

	setStr(&c.Log.Level, "LOG_LEVEL")
	setStr(&c.Log.Format, "LOG_FORMAT")
}

func lookup(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

func setStr(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v, ok := lookup(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
