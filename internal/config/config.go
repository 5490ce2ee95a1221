// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DataDir holds the persisted dataset; UploadsDir holds audit copies
	// of raw uploads.
	DataDir    string `yaml:"data_dir"`
	UploadsDir string `yaml:"uploads_dir"`

	// Model is the Gemini model name. APIKey is usually left empty here
	// and supplied via GEMINI_API_KEY.
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`

	LogLevel string `yaml:"log_level"`

	// MaxUploadBytes caps the accepted upload size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MaxRejectRatio is the tolerated fraction of unparseable rows
	// before an upload is refused outright. Unset means the normalizer
	// default; an explicit 0 refuses uploads with any invalid row.
	MaxRejectRatio *float64 `yaml:"max_reject_ratio"`

	// MaxExcerptRows bounds how many recent transactions go into the
	// model prompt.
	MaxExcerptRows int `yaml:"max_excerpt_rows"`

	// QueryTimeout bounds each completion call; QueryRetries is extra
	// attempts after transient failures.
	QueryTimeout Duration `yaml:"query_timeout"`
	QueryRetries int      `yaml:"query_retries"`
}

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func Default() Config {
	return Config{
		Addr:           ":8000",
		DataDir:        "./data",
		UploadsDir:     "./uploads",
		Model:          "gemini-2.0-flash",
		LogLevel:       "info",
		MaxUploadBytes: 16 << 20,
		MaxExcerptRows: 50,
		QueryTimeout:   Duration(30 * time.Second),
		QueryRetries:   0,
	}
}

// Load reads path (when non-empty), fills in defaults, then applies
// environment overrides. A missing file at an explicitly given path is
// an error; an empty path means env-and-defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		applyDefaults(&cfg)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = def.UploadsDir
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.MaxExcerptRows == 0 {
		cfg.MaxExcerptRows = def.MaxExcerptRows
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = def.QueryTimeout
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("FINANCE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("FINANCE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FINANCE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FINANCE_UPLOADS_DIR"); v != "" {
		cfg.UploadsDir = v
	}
	if v := os.Getenv("FINANCE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FINANCE_QUERY_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.QueryRetries = n
		}
	}
}
