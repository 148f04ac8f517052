/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the store configuration and opens the configured
// datastore.Client.
//
// Config file locations (priority order):
//  1. $RECORDSTORE_CONFIG
//  2. ./recordstore.yaml
//
// Environment variables (optionally from a .env file) override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/recordstore/storagemodels"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath = "RECORDSTORE_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "recordstore.yaml"

	EnvBackend     = "RECORDSTORE_BACKEND"
	EnvRegion      = "AWS_REGION"
	EnvAccessKey   = "AWS_ACCESS_KEY"
	EnvSecretKey   = "AWS_SECRET_KEY"
	EnvDDBEndpoint = "RECORDSTORE_DDB_ENDPOINT"
	EnvSQLitePath  = "RECORDSTORE_SQLITE_PATH"
)

// Backend names a store implementation
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendDynamoDB Backend = "dynamodb"
	BackendSQLite   Backend = "sqlite"
)

// Config is the root configuration
type Config struct {
	Backend  Backend        `yaml:"backend"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Scan     ScanConfig     `yaml:"scan"`
	// DefaultTTL is written with every saved record; zero means never expire
	DefaultTTL Duration `yaml:"default_ttl,omitempty"`
}

// DynamoDBConfig configures the DynamoDB backend
type DynamoDBConfig struct {
	Region       string   `yaml:"region"`
	AccessKey    string   `yaml:"access_key,omitempty"`
	SecretKey    string   `yaml:"secret_key,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	TablePrefix  string   `yaml:"table_prefix,omitempty"`
	BatchRetries int      `yaml:"batch_retries"`
	BatchBackoff Duration `yaml:"batch_backoff"`
}

// SQLiteConfig configures the SQLite backend
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ScanConfig holds the default stream settings for scans
type ScanConfig struct {
	BufferSize   int      `yaml:"buffer_size"`
	PageSize     int32    `yaml:"page_size"`
	MaxRetries   int      `yaml:"max_retries"`
	RetryBackoff Duration `yaml:"retry_backoff"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads .env (if present) and the config file (if found), then applies
// environment overrides. Without a file the defaults are used. The returned
// path is empty when no file was read.
func Load() (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	path := FindConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		cfg.applyDefaults()
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config, applies environment overrides and defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigPath returns the first existing config file, or "".
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	return ""
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() *Config {
	cfg := &Config{Backend: BackendMemory}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	c.Backend = Backend(strings.ToLower(string(c.Backend)))

	if c.SQLite.Path == "" {
		c.SQLite.Path = "./recordstore.db"
	}
	if c.DynamoDB.BatchRetries == 0 {
		c.DynamoDB.BatchRetries = 3
	}
	if c.DynamoDB.BatchBackoff == 0 {
		c.DynamoDB.BatchBackoff = Duration(100 * time.Millisecond)
	}

	defaults := storagemodels.DefaultStreamOptions()
	if c.Scan.BufferSize == 0 {
		c.Scan.BufferSize = defaults.BufferSize
	}
	if c.Scan.PageSize == 0 {
		c.Scan.PageSize = defaults.PageSize
	}
	if c.Scan.MaxRetries == 0 {
		c.Scan.MaxRetries = defaults.MaxRetries
	}
	if c.Scan.RetryBackoff == 0 {
		c.Scan.RetryBackoff = Duration(defaults.RetryBackoff)
	}
}

// applyEnv overrides file values with set environment variables
func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvBackend); ok && v != "" {
		c.Backend = Backend(v)
	}
	override(&c.DynamoDB.Region, EnvRegion)
	override(&c.DynamoDB.AccessKey, EnvAccessKey)
	override(&c.DynamoDB.SecretKey, EnvSecretKey)
	override(&c.DynamoDB.Endpoint, EnvDDBEndpoint)
	override(&c.SQLite.Path, EnvSQLitePath)
}

// Validate checks the settings of the selected backend
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb backend requires a region")
		}
		if (c.DynamoDB.AccessKey == "") != (c.DynamoDB.SecretKey == "") {
			return fmt.Errorf("dynamodb access key and secret key must be set together")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Scan.BufferSize < 0 || c.Scan.PageSize < 0 || c.Scan.MaxRetries < 0 {
		return fmt.Errorf("scan settings must not be negative")
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("default_ttl must not be negative")
	}
	return nil
}

// StreamOptions returns the scan defaults as stream options
func (c *Config) StreamOptions() []storagemodels.StreamOption {
	return []storagemodels.StreamOption{
		storagemodels.WithBufferSize(c.Scan.BufferSize),
		storagemodels.WithPageSize(c.Scan.PageSize),
		storagemodels.WithMaxRetries(c.Scan.MaxRetries),
		storagemodels.WithRetryBackoff(c.Scan.RetryBackoff.Duration()),
	}
}

// RecordMeta returns the metadata repositories should write, or nil when
// records never expire.
func (c *Config) RecordMeta() *storagemodels.RecordMeta {
	if c.DefaultTTL <= 0 {
		return nil
	}
	return &storagemodels.RecordMeta{TTL: c.DefaultTTL.Duration()}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
