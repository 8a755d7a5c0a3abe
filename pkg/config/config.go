package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for reachable.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Which files are treated as documents
	Input InputConfig `koanf:"input" toml:"input"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	Log LogConfig `koanf:"log" toml:"log"`
}

// AnalysisConfig controls the reachability pass.
type AnalysisConfig struct {
	Parallelism     int   `koanf:"parallelism" toml:"parallelism"`
	MaxDocumentSize int64 `koanf:"max_document_size" toml:"max_document_size"` // bytes, 0 = unlimited
	ValidateSchema  bool  `koanf:"validate_schema" toml:"validate_schema"`
}

// InputConfig selects document files by suffix.
type InputConfig struct {
	Extensions []string `koanf:"extensions" toml:"extensions"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"` // trace, debug, info, warn, error
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Parallelism:     1,
			MaxDocumentSize: 64 << 20,
			ValidateSchema:  true,
		},
		Input: InputConfig{
			Extensions: []string{".ir.yaml", ".ir.yml", ".ir.json"},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.tmp.ir.yaml",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".reachable",
				"target",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".reachable/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched, in order, by Find.
var configNames = []string{
	"reachable.toml",
	"reachable.yaml",
	"reachable.yml",
	"reachable.json",
	".reachable.toml",
	".reachable.yaml",
	".reachable.yml",
	".reachable.json",
}

// Find returns the first config file in dir or dir/.reachable, or "".
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".reachable")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the first config found in the working directory,
// falling back to defaults when none exists or it fails to load.
func LoadOrDefault() *Config {
	if path := Find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Validate reports values that cannot be used.
func (c *Config) Validate() error {
	if c.Analysis.Parallelism < 0 {
		return fmt.Errorf("analysis.parallelism must not be negative, got %d", c.Analysis.Parallelism)
	}
	if c.Analysis.MaxDocumentSize < 0 {
		return fmt.Errorf("analysis.max_document_size must not be negative, got %d", c.Analysis.MaxDocumentSize)
	}
	if len(c.Input.Extensions) == 0 {
		return fmt.Errorf("input.extensions must list at least one suffix")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %d", c.Cache.TTL)
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "text", "json", "markdown", "md", "toon":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// IsDocument reports whether path ends in one of the input extensions.
func (c *Config) IsDocument(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range c.Input.Extensions {
		if strings.HasSuffix(base, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// ParseLevel maps a level name to a slog level. "trace" is one step below
// debug and enables per-node marking logs.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return slog.Level(-8), nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log.level %q", s)
}
