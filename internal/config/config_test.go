package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.NearestCount != 3 {
		t.Errorf("NearestCount = %v, want 3", c.NearestCount)
	}
	if c.MaxStops != 24 {
		t.Errorf("MaxStops = %v, want 24", c.MaxStops)
	}
	if c.FleetPingMinJumps != 5 {
		t.Errorf("FleetPingMinJumps = %v, want 5", c.FleetPingMinJumps)
	}
	if c.Source != "csv" {
		t.Errorf("Source = %q, want csv", c.Source)
	}
	if len(c.PopularSystems) == 0 || c.PopularSystems[0] != "Jita" {
		t.Errorf("PopularSystems = %v, want Jita first", c.PopularSystems)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jumpbot.yaml")
	body := "data_dir: /srv/jumpbot\npopular_systems:\n  - Jita\n  - New Caldari\nnearest_count: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("JUMPBOT_MAX_STOPS", "10")
	t.Setenv("JUMPBOT_DEBUG_LOGGING", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/jumpbot", cfg.DataDir)
	assert.Equal(t, []string{"Jita", "New Caldari"}, cfg.PopularSystems)
	assert.Equal(t, 5, cfg.NearestCount)
	assert.Equal(t, 10, cfg.MaxStops)
	assert.True(t, cfg.DebugLogging)
	assert.Equal(t, filepath.Join("/srv/jumpbot", "jumpbot.db"), cfg.DBPath)
}

func TestLoad_PopularSystemsFromEnvKeepsSpaces(t *testing.T) {
	t.Setenv("JUMPBOT_POPULAR_SYSTEMS", "Jita, New Caldari ,Amarr")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err, "explicit missing config file should fail")
	assert.Nil(t, cfg)

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jita", "New Caldari", "Amarr"}, cfg.PopularSystems)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"bad source", func(c *Config) { c.Source = "xml" }, "source"},
		{"no popular", func(c *Config) { c.PopularSystems = nil }, "popular_systems"},
		{"zero nearest", func(c *Config) { c.NearestCount = 0 }, "nearest_count"},
		{"one stop", func(c *Config) { c.MaxStops = 1 }, "max_stops"},
		{"negative fleetping", func(c *Config) { c.FleetPingMinJumps = -1 }, "fleetping_min_jumps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mut(c)
			err := c.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestYAML_RoundTripsNames(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "popular_systems:"))
	assert.True(t, strings.Contains(out, "- Jita"))
}
