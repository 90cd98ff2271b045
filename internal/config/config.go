// Package config loads process configuration from an optional YAML file with
// environment-variable overrides. Every field has a workable default, so a
// bare binary starts against a local SQLite file with search disabled.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full process configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Lake     LakeConfig     `yaml:"lake"`
	Search   SearchConfig   `yaml:"search"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Extract  ExtractConfig  `yaml:"extract"`
}

// DatabaseConfig selects the warehouse backend.
type DatabaseConfig struct {
	// Kind is one of "postgres", "sqlite", "mssql".
	Kind string `yaml:"kind" env:"DB_KIND" env-default:"sqlite"`
	DSN  string `yaml:"dsn" env:"DB_DSN" env-default:"file:moviedw.db"`
}

// LakeConfig locates the snapshot directory.
type LakeConfig struct {
	Dir string `yaml:"dir" env:"LAKE_DIR" env-default:"./lake"`
}

// SearchConfig wires the optional Elasticsearch sink. With Enabled false the
// pipeline skips indexing entirely.
type SearchConfig struct {
	Enabled   bool     `yaml:"enabled" env:"SEARCH_ENABLED" env-default:"false"`
	Addresses []string `yaml:"addresses" env:"SEARCH_ADDRESSES" env-default:"http://localhost:9200"`
	Index     string   `yaml:"index" env:"SEARCH_INDEX" env-default:"movies"`
	Username  string   `yaml:"username" env:"SEARCH_USERNAME"`
	Password  string   `yaml:"password" env:"SEARCH_PASSWORD"`
}

// APIConfig binds the HTTP server.
type APIConfig struct {
	Host string `yaml:"host" env:"API_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"API_PORT" env-default:"8000"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	// Backend is "none" or "datadog".
	Backend string `yaml:"backend" env:"METRICS_BACKEND" env-default:"none"`
	JobName string `yaml:"job_name" env:"METRICS_JOB_NAME" env-default:"moviedw"`
	// Tags is comma-separated, e.g. "env:prod,service:moviedw".
	Tags string `yaml:"tags" env:"METRICS_TAGS"`
}

// ExtractConfig tunes source-file parsing.
type ExtractConfig struct {
	// CSVEncoding is one of "utf-8", "windows-1252", "latin-1".
	CSVEncoding string `yaml:"csv_encoding" env:"CSV_ENCODING" env-default:"utf-8"`
}

// Load reads path when it exists and applies environment overrides on top.
// An empty or missing path falls back to environment and defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

// Addr is the host:port bind address for the HTTP server.
func (c *Config) Addr() string { return c.API.Host + ":" + c.API.Port }
