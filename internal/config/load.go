package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override (JUMPBOT_DATA_DIR, ...).
const EnvPrefix = "JUMPBOT"

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// Load reads configuration from an optional YAML file and JUMPBOT_* environment
// variables, layered over Default(). An empty path looks for jumpbot.yaml in the
// working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	def := Default()
	v := viper.New()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("source", def.Source)
	v.SetDefault("addr", def.Addr)
	v.SetDefault("popular_systems", def.PopularSystems)
	v.SetDefault("nearest_count", def.NearestCount)
	v.SetDefault("max_stops", def.MaxStops)
	v.SetDefault("fleetping_min_jumps", def.FleetPingMinJumps)
	v.SetDefault("fuzzy_denylist", def.FuzzyDenylist)
	v.SetDefault("debug_logging", def.DebugLogging)
	v.SetDefault("history", def.History)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jumpbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:           v.GetString("data_dir"),
		DBPath:            v.GetString("db_path"),
		Source:            strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		Addr:              v.GetString("addr"),
		PopularSystems:    nameList(v.Get("popular_systems")),
		NearestCount:      v.GetInt("nearest_count"),
		MaxStops:          v.GetInt("max_stops"),
		FleetPingMinJumps: v.GetInt("fleetping_min_jumps"),
		FuzzyDenylist:     nameList(v.Get("fuzzy_denylist")),
		DebugLogging:      v.GetBool("debug_logging"),
		History:           v.GetBool("history"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "jumpbot.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// nameList accepts a YAML list or a comma separated string. System names
// contain spaces ("New Caldari"), so whitespace is never a separator.
func nameList(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []interface{}:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"[]`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings the engine depends on.
func (c *Config) Validate() error {
	switch c.Source {
	case "csv", "sde", "db":
	default:
		return &ConfigError{Field: "source", Message: fmt.Sprintf("unknown catalog source %q", c.Source)}
	}
	if len(c.PopularSystems) == 0 {
		return &ConfigError{Field: "popular_systems", Message: "at least one system is required"}
	}
	if c.NearestCount < 1 {
		return &ConfigError{Field: "nearest_count", Message: "must be >= 1"}
	}
	if c.MaxStops < 2 {
		return &ConfigError{Field: "max_stops", Message: "must be >= 2"}
	}
	if c.FleetPingMinJumps < 0 {
		return &ConfigError{Field: "fleetping_min_jumps", Message: "must be >= 0"}
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
