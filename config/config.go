package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/risk"
)

// Config represents the complete run configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Execution  ExecutionConfig  `json:"execution" yaml:"execution"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Compliance ComplianceConfig `json:"compliance" yaml:"compliance"`
	Mimicry    MimicryConfig    `json:"mimicry" yaml:"mimicry"`
	Data       DataConfig       `json:"data" yaml:"data"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Events     EventsConfig     `json:"events" yaml:"events"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type AccountConfig struct {
	ID          string  `json:"id" yaml:"id"`
	Currency    string  `json:"currency" yaml:"currency"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

type ExecutionConfig struct {
	CommissionRate  float64 `json:"commission_rate" yaml:"commission_rate"`
	LeverageAllowed bool    `json:"leverage_allowed" yaml:"leverage_allowed"`
	// MaxLeverage bounds borrowing: cash may fall to
	// -(MaxLeverage-1) × initial cash when leverage is allowed.
	MaxLeverage float64 `json:"max_leverage" yaml:"max_leverage"`
}

type RiskConfig struct {
	MaxDrawdown      float64  `json:"max_drawdown" yaml:"max_drawdown"`
	RestrictedAssets []string `json:"restricted_assets,omitempty" yaml:"restricted_assets,omitempty"`
}

type ComplianceConfig struct {
	CorruptionThreshold float64  `json:"corruption_threshold" yaml:"corruption_threshold"`
	ESGThreshold        float64  `json:"esg_threshold" yaml:"esg_threshold"`
	BlockedSegments     []string `json:"blocked_segments,omitempty" yaml:"blocked_segments,omitempty"`

	// Scores are per-asset inputs. Missing values fall back to the index;
	// anything still unknown is blocked.
	Scores map[string]ScoreConfig `json:"scores,omitempty" yaml:"scores,omitempty"`

	// CountryCPI and CompanyESG replace the built-in index when either is
	// set.
	CountryCPI map[string]float64 `json:"country_cpi,omitempty" yaml:"country_cpi,omitempty"`
	CompanyESG map[string]float64 `json:"company_esg,omitempty" yaml:"company_esg,omitempty"`
}

type ScoreConfig struct {
	Country         string   `json:"country,omitempty" yaml:"country,omitempty"`
	Segment         string   `json:"segment,omitempty" yaml:"segment,omitempty"`
	CorruptionIndex *float64 `json:"corruption_index,omitempty" yaml:"corruption_index,omitempty"`
	ESGScore        *float64 `json:"esg_score,omitempty" yaml:"esg_score,omitempty"`
}

type MimicryConfig struct {
	Profile  string          `json:"profile" yaml:"profile"`
	Profiles []ProfileConfig `json:"profiles,omitempty" yaml:"profiles,omitempty"`
}

type ProfileConfig struct {
	Name                string  `json:"name" yaml:"name"`
	Actor               string  `json:"actor,omitempty" yaml:"actor,omitempty"`
	Style               string  `json:"style,omitempty" yaml:"style,omitempty"`
	ShortWindow         int     `json:"short_window" yaml:"short_window"`
	LookbackWindow      int     `json:"lookback_window" yaml:"lookback_window"`
	RiskTolerance       float64 `json:"risk_tolerance" yaml:"risk_tolerance"`
	MaxPositionFraction float64 `json:"max_position_fraction" yaml:"max_position_fraction"`
}

type DataConfig struct {
	BarsFile string   `json:"bars_file" yaml:"bars_file"`
	Assets   []string `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type           string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile     string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	ComplianceFile string `json:"compliance_file,omitempty" yaml:"compliance_file,omitempty"`
	ResultsFile    string `json:"results_file,omitempty" yaml:"results_file,omitempty"`
	DBPath         string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgFile        string `json:"org_file,omitempty" yaml:"org_file,omitempty"`
}

type EventsConfig struct {
	Type          string `json:"type" yaml:"type"` // "none" or "redis"
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	RedisTLS      bool   `json:"redis_tls,omitempty" yaml:"redis_tls,omitempty"`
	Channel       string `json:"channel,omitempty" yaml:"channel,omitempty"`
	Stream        string `json:"stream,omitempty" yaml:"stream,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// LoadFromFile loads configuration from a file on top of Default. YAML is
// tried first, then JSON. The result is validated.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid. An unknown mimicry
// profile is reported here so a run never starts with one.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if !(c.Account.InitialCash > 0) || math.IsInf(c.Account.InitialCash, 0) {
		return fmt.Errorf("account.initial_cash must be positive and finite")
	}
	if !(c.Execution.CommissionRate >= 0 && c.Execution.CommissionRate < 1) {
		return fmt.Errorf("execution.commission_rate must be in [0, 1)")
	}
	if c.Execution.LeverageAllowed && c.Execution.MaxLeverage < 1 {
		return fmt.Errorf("execution.max_leverage must be at least 1")
	}
	if !(c.Risk.MaxDrawdown > 0) || c.Risk.MaxDrawdown >= 1 {
		return fmt.Errorf("risk.max_drawdown must be in (0, 1)")
	}
	if !inScoreRange(c.Compliance.CorruptionThreshold) {
		return fmt.Errorf("compliance.corruption_threshold must be in [0, 100]")
	}
	if !inScoreRange(c.Compliance.ESGThreshold) {
		return fmt.Errorf("compliance.esg_threshold must be in [0, 100]")
	}
	for asset, s := range c.Compliance.Scores {
		if s.CorruptionIndex != nil && !inScoreRange(*s.CorruptionIndex) {
			return fmt.Errorf("compliance.scores.%s.corruption_index must be in [0, 100]", asset)
		}
		if s.ESGScore != nil && !inScoreRange(*s.ESGScore) {
			return fmt.Errorf("compliance.scores.%s.esg_score must be in [0, 100]", asset)
		}
	}
	if _, err := c.Profile(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.ComplianceFile == "" || c.Journal.ResultsFile == "" {
			return fmt.Errorf("journal trades_file, compliance_file and results_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	switch c.Events.Type {
	case "none":
	case "redis":
		if c.Events.RedisAddr == "" {
			return fmt.Errorf("events.redis_addr required for redis type")
		}
		if c.Events.Channel == "" && c.Events.Stream == "" {
			return fmt.Errorf("events.channel or events.stream required for redis type")
		}
	default:
		return fmt.Errorf("events.type must be 'none' or 'redis'")
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

func inScoreRange(v float64) bool { return v >= 0 && v <= 100 }

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:          "SIM-001",
			Currency:    "USD",
			InitialCash: 10000,
		},
		Execution: ExecutionConfig{
			CommissionRate: 0.001,
			MaxLeverage:    2,
		},
		Risk: RiskConfig{
			MaxDrawdown: risk.DefaultMaxDrawdown,
		},
		Compliance: ComplianceConfig{
			CorruptionThreshold: compliance.DefaultCorruptionThreshold,
			ESGThreshold:        compliance.DefaultESGThreshold,
		},
		Mimicry: MimicryConfig{
			Profile: "NBIM",
		},
		Data: DataConfig{
			BarsFile: "./bars.csv",
		},
		Journal: JournalConfig{
			Type:           "csv",
			TradesFile:     "./trades.csv",
			ComplianceFile: "./compliance.csv",
			ResultsFile:    "./results.csv",
		},
		Events: EventsConfig{
			Type:    "none",
			Channel: "tradex:events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
