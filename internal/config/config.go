package config

// Config holds application settings (in-memory representation).
// Loading from file and environment is handled by Load.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	DBPath  string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
	// Source selects the catalog loader: "csv" (jumpbot data files), "sde"
	// (CCP static data export) or "db" (SQLite snapshot only).
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Addr   string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// PopularSystems are the reference systems for popularity queries.
	PopularSystems []string `json:"popular_systems" yaml:"popular_systems" mapstructure:"popular_systems"`
	NearestCount   int      `json:"nearest_count" yaml:"nearest_count" mapstructure:"nearest_count"`
	MaxStops       int      `json:"max_stops" yaml:"max_stops" mapstructure:"max_stops"`

	// Fleet ping trigger.
	FleetPingMinJumps int      `json:"fleetping_min_jumps" yaml:"fleetping_min_jumps" mapstructure:"fleetping_min_jumps"`
	FuzzyDenylist     []string `json:"fuzzy_denylist" yaml:"fuzzy_denylist" mapstructure:"fuzzy_denylist"`

	DebugLogging bool `json:"debug_logging" yaml:"debug_logging" mapstructure:"debug_logging"`
	History      bool `json:"history" yaml:"history" mapstructure:"history"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Source:  "csv",
		Addr:    "127.0.0.1:13380",
		PopularSystems: []string{
			"Jita",
			"Amarr",
			"Dodixie",
			"Rens",
			"Hek",
		},
		NearestCount:      3,
		MaxStops:          24,
		FleetPingMinJumps: 5,
		FuzzyDenylist:     []string{"gate", "serpentis", "semi", "time", "promise", "vale"},
		History:           true,
	}
}
