// Package config handles loading, validation, and merging of studydash configuration files.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/drew/studydash/internal/model"
)

// DefaultPath is the config file looked up when none is given
const DefaultPath = "studydash.toml"

// Config represents the complete studydash configuration
type Config struct {
	Server  ServerConfig           `toml:"server"`
	Logging LoggingConfig          `toml:"logging"`
	Table   TableConfig            `toml:"table"`
	Tables  map[string]TableSource `toml:"tables"`
	Groups  map[string]GroupConfig `toml:"groups"`
}

// ServerConfig holds the dashboard server settings
type ServerConfig struct {
	// Listen address of the dashboard
	Listen string `toml:"listen" doc:"Listen address of the dashboard"`
	// Base URL of the statistics backend
	Backend string `toml:"backend" doc:"Base URL of the statistics backend" required:"true"`
	// Per-request timeout for backend calls in milliseconds
	RequestTimeoutMs int `toml:"requestTimeoutMs" doc:"Per-request timeout for backend calls in milliseconds"`
	// Minimum duration of the loading indicator on group change
	LoadingMinMs int `toml:"loadingMinMs" doc:"Minimum duration of the loading indicator on group change in milliseconds"`
	// Live timer refresh interval
	TimerIntervalMs int `toml:"timerIntervalMs" doc:"Live timer refresh interval in milliseconds"`
	// Study start instant shown by the live timer
	StudyStart string `toml:"studyStart" doc:"Study start instant shown by the live timer (any common date format)"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Minimum log level
	Level string `toml:"level" doc:"Minimum log level" enum:"debug,info,warn,error"`
	// Log output format
	Format string `toml:"format" doc:"Log output format: auto picks a coloured handler on a terminal" enum:"auto,text,json"`
}

// TableConfig holds defaults for every data table
type TableConfig struct {
	// Rows per page when the request does not choose one
	DefaultPageSize int `toml:"defaultPageSize" doc:"Rows per page when the request does not choose one" enum:"5,10,25,50,100"`
	// Header patterns that always get a filter control
	FilterKeywords []string `toml:"filterKeywords" doc:"Glob patterns matched against lower-cased headers; matching columns always get a filter control"`
}

// TableSource describes where a data table's rows come from
type TableSource struct {
	// Display title
	Title string `toml:"title" doc:"Display title"`
	// Backend path returning the rows
	Source string `toml:"source" doc:"Backend path returning the rows" required:"true"`
	// Body format of the source
	Format string `toml:"format" doc:"Body format of the source" enum:"csv,html"`
}

// GroupConfig is the static description of one study group
type GroupConfig struct {
	// Display name
	Name string `toml:"name" doc:"Display name"`
	// Description shown in the group panel
	Description string `toml:"description" doc:"Description shown in the group panel"`
	// Icon classes shown in the group panel
	Icons []string `toml:"icons" doc:"Icon classes shown in the group panel"`
	// Member count shown in the group panel
	Count int `toml:"count" doc:"Member count shown in the group panel"`
}

// LoadConfig loads configuration from a TOML file.
// A missing default file returns (nil, nil) so defaults apply.
func LoadConfig(path string) (*Config, error) {
	explicitPath := path != ""
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicitPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, nil
	}

	var cfg Config
	metadata, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	undecoded := metadata.Undecoded()
	if len(undecoded) > 0 {
		var unknownFields []string
		for _, key := range undecoded {
			unknownFields = append(unknownFields, key.String())
		}
		return nil, fmt.Errorf("unknown fields in config: %s", strings.Join(unknownFields, ", "))
	}

	for name, t := range cfg.Tables {
		if t.Source == "" {
			return nil, fmt.Errorf("table %q is missing required field: source", name)
		}
	}

	return &cfg, nil
}

// GetDefaults returns the default configuration
func GetDefaults() Config {
	return Config{
		Server: ServerConfig{
			Listen:           ":8080",
			Backend:          "http://localhost:5000",
			RequestTimeoutMs: 10000,
			LoadingMinMs:     300,
			TimerIntervalMs:  60000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Table: TableConfig{
			DefaultPageSize: 10,
			FilterKeywords:  DefaultFilterKeywords(),
		},
		Tables: BuiltInTables(),
		Groups: BuiltInGroups(),
	}
}

// MergeWithDefaults merges loaded config with defaults
func MergeWithDefaults(cfg *Config) Config {
	defaults := GetDefaults()

	if cfg == nil {
		return defaults
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}
	if cfg.Server.Backend == "" {
		cfg.Server.Backend = defaults.Server.Backend
	}
	if cfg.Server.RequestTimeoutMs == 0 {
		cfg.Server.RequestTimeoutMs = defaults.Server.RequestTimeoutMs
	}
	if cfg.Server.LoadingMinMs == 0 {
		cfg.Server.LoadingMinMs = defaults.Server.LoadingMinMs
	}
	if cfg.Server.TimerIntervalMs == 0 {
		cfg.Server.TimerIntervalMs = defaults.Server.TimerIntervalMs
	}
	cfg.Server.Backend = strings.TrimRight(cfg.Server.Backend, "/")

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}

	if cfg.Table.DefaultPageSize == 0 {
		cfg.Table.DefaultPageSize = defaults.Table.DefaultPageSize
	}
	if len(cfg.Table.FilterKeywords) == 0 {
		cfg.Table.FilterKeywords = defaults.Table.FilterKeywords
	}

	if len(cfg.Tables) == 0 {
		cfg.Tables = defaults.Tables
	}
	for name, t := range cfg.Tables {
		if t.Format == "" {
			t.Format = "csv"
		}
		if t.Title == "" {
			t.Title = name
		}
		cfg.Tables[name] = t
	}

	if len(cfg.Groups) == 0 {
		cfg.Groups = defaults.Groups
	}

	return *cfg
}

// RequestTimeout returns the backend timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

// LoadingMin returns the minimum loading-indicator duration
func (c *Config) LoadingMin() time.Duration {
	return time.Duration(c.Server.LoadingMinMs) * time.Millisecond
}

// TimerInterval returns the live timer refresh interval
func (c *Config) TimerInterval() time.Duration {
	return time.Duration(c.Server.TimerIntervalMs) * time.Millisecond
}

// Catalog returns the configured groups keyed by model group, plus their
// order (numeric ascending)
func (c *Config) Catalog() (map[model.Group]model.GroupInfo, []model.Group) {
	catalog := make(map[model.Group]model.GroupInfo, len(c.Groups))
	var order []model.Group
	for id, g := range c.Groups {
		group, err := model.ParseGroup(id)
		if err != nil || group.IsAll() {
			continue
		}
		catalog[group] = model.GroupInfo{
			Name:        g.Name,
			Description: g.Description,
			Icons:       g.Icons,
			Count:       g.Count,
		}
		order = append(order, group)
	}
	sort.Slice(order, func(i, j int) bool {
		a, _ := strconv.Atoi(string(order[i]))
		b, _ := strconv.Atoi(string(order[j]))
		return a < b
	})
	return catalog, order
}

// TableNames returns the configured table names sorted
func (c *Config) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
