/*
Package config loads the service configuration.

PURPOSE:
  YAML file plus optional environment overrides (ME_ prefix, __ as the
  nesting separator, e.g. ME_SERVER__ADDR=:9090). Policy overrides let an
  operator tighten or loosen service intervals per service type without a
  code change.

USAGE:
  cfg, err := config.Load("config.yaml")
  policies := fleet.DefaultPolicies().Merge(cfg.PolicyOverrides())
*/
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/warp/maintenance-engine/fleet"
)

type Config struct {
	Server   ServerConfig            `json:"server"`
	Database DatabaseConfig          `json:"database"`
	Logging  LoggingConfig           `json:"logging"`
	Policies map[string]PolicyConfig `json:"policies"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

// PolicyConfig overrides one service type's interval. Zero fields fall back
// to the built-in policy table.
type PolicyConfig struct {
	IntervalDays  int     `json:"interval_days"`
	IntervalMiles float64 `json:"interval_miles"`
}

func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./fleet.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	for name, p := range c.Policies {
		if p.IntervalDays < 0 || p.IntervalMiles < 0 {
			return fmt.Errorf("policy %s: intervals must not be negative", name)
		}
	}
	return nil
}

// PolicyOverrides converts the configured policy entries into the domain
// policy table, suitable for fleet.DefaultPolicies().Merge.
func (c *Config) PolicyOverrides() fleet.Policies {
	if len(c.Policies) == 0 {
		return nil
	}
	out := make(fleet.Policies, len(c.Policies))
	for name, p := range c.Policies {
		base := fleet.DefaultPolicy
		if p.IntervalDays > 0 {
			base.IntervalDays = p.IntervalDays
		}
		if p.IntervalMiles > 0 {
			base.IntervalMiles = decimal.NewFromFloat(p.IntervalMiles)
		}
		out[strings.ToUpper(name)] = base
	}
	return out
}

// Load reads the YAML file at path, applies ME_ environment overrides, and
// validates the result. An empty path yields a default configuration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Optional environment overrides
	if err := k.Load(env.Provider("ME_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "me_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
