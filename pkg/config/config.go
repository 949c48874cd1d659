package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for lantern.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// File exclusion rules
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls extraction behavior.
type AnalysisConfig struct {
	// Workers bounds the extraction pool; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`
	// FileTimeoutSec abandons a single file's parse after this many seconds.
	FileTimeoutSec int `koanf:"file_timeout_sec" toml:"file_timeout_sec"`
	// MaxFileSize skips files larger than this many bytes; 0 means no limit.
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
}

// ExcludeConfig defines file exclusion rules.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching of analysis results.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, yaml, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults. The directory list
// covers dependency, build, VCS, cache, and media directories that would
// bloat the map without adding architecture information.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:        0,
			FileTimeoutSec: 10,
			MaxFileSize:    2 << 20, // 2 MiB
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Dirs: []string{
				".git", ".svn", ".hg",
				"node_modules", "bower_components", ".npm", ".yarn",
				"venv", ".venv", "env", ".env", "virtualenv",
				"__pycache__", ".pytest_cache", ".mypy_cache", ".ruff_cache",
				"site-packages", ".eggs",
				"dist", "build", "out", "output", "target", "bin", "obj",
				".next", ".nuxt", ".output", ".cache", ".parcel-cache",
				".vscode", ".idea", ".vs", ".eclipse",
				"vendor", "third_party", "external",
				"coverage", ".coverage", "htmlcov", ".tox",
				"tmp", "temp", "logs",
				"assets", "static", "public", "media", "uploads",
				".lantern",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".lantern/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
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
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"lantern.toml",
		"lantern.yaml",
		"lantern.yml",
		"lantern.json",
		".lantern.toml",
		".lantern.yaml",
		".lantern.yml",
		".lantern.json",
	}

	for _, dir := range []string{".", ".lantern"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}
