package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/araddon/dateparse"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/drew/studydash/internal/model"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult holds the results of config validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig validates an already-loaded config
func ValidateConfig(cfg *Config) (*ValidationResult, error) {
	result := newResult()

	if cfg == nil {
		return result, nil
	}

	validateServer(&cfg.Server, result)
	validateLogging(&cfg.Logging, result)
	validateTable(&cfg.Table, result)
	for name, t := range cfg.Tables {
		validateTableSource(name, t, result)
	}
	for id, g := range cfg.Groups {
		validateGroup(id, g, result)
	}

	return result, nil
}

// ValidateConfigFile validates a TOML config file
func ValidateConfigFile(path string) (*ValidationResult, error) {
	result := newResult()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	metadata, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		result.addError("", "Invalid TOML syntax: %v", err)
		return result, nil
	}

	for _, key := range metadata.Undecoded() {
		result.addError(key.String(), "Unknown configuration field")
	}

	validateServer(&cfg.Server, result)
	validateLogging(&cfg.Logging, result)
	validateTable(&cfg.Table, result)
	for name, t := range cfg.Tables {
		validateTableSource(name, t, result)
	}
	for id, g := range cfg.Groups {
		validateGroup(id, g, result)
	}

	return result, nil
}

// validateServer validates the server section
func validateServer(server *ServerConfig, result *ValidationResult) {
	if server.Backend != "" {
		u, err := url.Parse(server.Backend)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			result.addError("server.backend", "Backend must be an http or https URL, got '%s'", server.Backend)
		}
	}

	durations := map[string]int{
		"server.requestTimeoutMs": server.RequestTimeoutMs,
		"server.loadingMinMs":     server.LoadingMinMs,
		"server.timerIntervalMs":  server.TimerIntervalMs,
	}
	for field, v := range durations {
		if v < 0 {
			result.addError(field, "Duration must be non-negative")
		}
	}

	if server.StudyStart == "" {
		result.addWarning("server.studyStart", "No study start set, the live timer will show 'Not started'")
	} else if _, err := dateparse.ParseAny(server.StudyStart); err != nil {
		result.addError("server.studyStart", "Cannot parse study start '%s': %v", server.StudyStart, err)
	}
}

// validateLogging validates the logging section
func validateLogging(logging *LoggingConfig, result *ValidationResult) {
	if logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		if !slices.Contains(validLevels, logging.Level) {
			result.addError("logging.level", "Invalid log level '%s'. Valid options: %s", logging.Level, strings.Join(validLevels, ", "))
		}
	}

	if logging.Format != "" {
		validFormats := []string{"auto", "text", "json"}
		if !slices.Contains(validFormats, logging.Format) {
			result.addError("logging.format", "Invalid log format '%s'. Valid options: %s", logging.Format, strings.Join(validFormats, ", "))
		}
	}
}

// validateTable validates the table defaults section
func validateTable(table *TableConfig, result *ValidationResult) {
	if table.DefaultPageSize != 0 && !slices.Contains(ValidPageSizes(), table.DefaultPageSize) {
		result.addError("table.defaultPageSize", "Invalid page size %d. Valid options: 5, 10, 25, 50, 100", table.DefaultPageSize)
	}

	for i, pattern := range table.FilterKeywords {
		if !doublestar.ValidatePattern(pattern) {
			result.addError(fmt.Sprintf("table.filterKeywords[%d]", i), "Invalid glob pattern '%s'", pattern)
		}
	}
}

// validateTableSource validates one [tables.X] entry
func validateTableSource(name string, t TableSource, result *ValidationResult) {
	prefix := fmt.Sprintf("tables.%s", name)

	if t.Source == "" {
		result.addError(prefix+".source", "Table must have a source")
	} else if !strings.HasPrefix(t.Source, "/") {
		result.addWarning(prefix+".source", "Source '%s' is not an absolute backend path", t.Source)
	}

	if t.Format != "" && t.Format != "csv" && t.Format != "html" {
		result.addError(prefix+".format", "Invalid table format '%s'. Valid options: csv, html", t.Format)
	}
}

// validateGroup validates one [groups.X] entry
func validateGroup(id string, g GroupConfig, result *ValidationResult) {
	prefix := fmt.Sprintf("groups.%s", id)

	group, err := model.ParseGroup(id)
	if err != nil || group.IsAll() {
		result.addError(prefix, "Group id must be a non-negative integer")
		return
	}

	if g.Name == "" {
		result.addWarning(prefix+".name", "Group should have a name")
	}
	if g.Count < 0 {
		result.addError(prefix+".count", "Member count must be non-negative")
	}
}

// PrintValidationResult prints the validation result in a human-readable format
func PrintValidationResult(path string, result *ValidationResult) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📋 Validating: %s\n", path)

	if result.Valid && len(result.Warnings) == 0 {
		fmt.Println("✅ Configuration is valid!")
		fmt.Println()
		return
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n❌ Found %d error(s):\n", len(result.Errors))
		for _, err := range result.Errors {
			if err.Field != "" {
				fmt.Printf("  • [%s] %s\n", err.Field, err.Message)
			} else {
				fmt.Printf("  • %s\n", err.Message)
			}
		}
		fmt.Println()
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("⚠️  Found %d warning(s):\n", len(result.Warnings))
		for _, warn := range result.Warnings {
			if warn.Field != "" {
				fmt.Printf("  • [%s] %s\n", warn.Field, warn.Message)
			} else {
				fmt.Printf("  • %s\n", warn.Message)
			}
		}
		fmt.Println()
	}

	if !result.Valid {
		fmt.Println("❌ Configuration is INVALID")
	} else {
		fmt.Println("✅ Configuration is valid (with warnings)")
	}
	fmt.Println()
}
