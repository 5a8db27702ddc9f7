package osaquery

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the osaquery configuration
type Config struct {
	DefaultApplication string            `yaml:"default_application"`
	Dictionaries       DictionaryConfig  `yaml:"dictionaries"`
	Query              QueryConfig       `yaml:"query"`
	Paths              PathsConfig       `yaml:"paths"`
	Applications       map[string]string `yaml:"applications"` // display name -> sdef file override
}

// DictionaryConfig represents dictionary (sdef) loading settings
type DictionaryConfig struct {
	SearchPaths     []string `yaml:"search_paths"`
	MaxIncludeDepth int      `yaml:"max_include_depth"`
}

// QueryConfig represents query execution settings
type QueryConfig struct {
	DefaultFormat string        `yaml:"default_format"`
	Timeout       time.Duration `yaml:"timeout"`
	ReplayFile    string        `yaml:"replay_file"`
}

// PathsConfig represents path-finder settings
type PathsConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxResults int `yaml:"max_results"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Query.Timeout < 0 {
		return fmt.Errorf("%w: query.timeout must be non-negative, got %s", ErrConfigValidation, config.Query.Timeout)
	}

	if config.Paths.MaxDepth < 0 {
		return fmt.Errorf("%w: paths.max_depth must be non-negative, got %d", ErrConfigValidation, config.Paths.MaxDepth)
	}

	if config.Paths.MaxResults < 0 {
		return fmt.Errorf("%w: paths.max_results must be non-negative, got %d", ErrConfigValidation, config.Paths.MaxResults)
	}

	if config.Dictionaries.MaxIncludeDepth < 0 {
		return fmt.Errorf("%w: dictionaries.max_include_depth must be non-negative, got %d", ErrConfigValidation, config.Dictionaries.MaxIncludeDepth)
	}

	if config.Query.DefaultFormat != "" {
		validFormats := map[string]bool{
			"plain": true,
			"json":  true,
		}
		if !validFormats[config.Query.DefaultFormat] {
			return fmt.Errorf("%w: query.default_format '%s' is invalid: must be one of plain, json", ErrConfigValidation, config.Query.DefaultFormat)
		}
	}

	return nil
}

// applyDefaults fills in zero-valued fields with defaults
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if len(config.Dictionaries.SearchPaths) == 0 {
		config.Dictionaries.SearchPaths = defaults.Dictionaries.SearchPaths
	}

	if config.Dictionaries.MaxIncludeDepth == 0 {
		config.Dictionaries.MaxIncludeDepth = defaults.Dictionaries.MaxIncludeDepth
	}

	if config.Query.DefaultFormat == "" {
		config.Query.DefaultFormat = defaults.Query.DefaultFormat
	}

	if config.Query.Timeout == 0 {
		config.Query.Timeout = defaults.Query.Timeout
	}

	if config.Paths.MaxDepth == 0 {
		config.Paths.MaxDepth = defaults.Paths.MaxDepth
	}

	if config.Applications == nil {
		config.Applications = make(map[string]string)
	}
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Dictionaries: DictionaryConfig{
			SearchPaths: []string{
				"/System/Library/ScriptingDefinitions",
				"./sdef",
			},
			MaxIncludeDepth: 8,
		},
		Query: QueryConfig{
			DefaultFormat: "plain",
			Timeout:       10 * time.Second,
		},
		Paths: PathsConfig{
			MaxDepth:   5,
			MaxResults: 0, // unlimited
		},
		Applications: make(map[string]string),
	}
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() error {
	envFiles := []string{".env.local", ".env"}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return fmt.Errorf("failed to load %s: %w", file, err)
			}
		}
	}

	return nil
}
