package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC health endpoint

	Env       string `yaml:"env"` // "dev" | "prod"
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "text" | "json"

	// Remote ledger
	LedgerURL            string `yaml:"ledger_url"`
	LedgerAPIKey         string `yaml:"ledger_api_key"`
	LedgerTimeoutSeconds int    `yaml:"ledger_timeout_seconds"`

	MetricsEnabled bool     `yaml:"metrics_enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS; empty means same-origin only

	// CLI
	ProxyURL string `yaml:"proxy_url"`
	Lang     string `yaml:"lang"` // notification language; empty follows LANG

	// Development ledger
	DevLedgerAddr      string `yaml:"dev_ledger_addr"`
	DBPath             string `yaml:"db_path"`
	SeedPassword       string `yaml:"seed_password"`
	LogRetentionDays   int    `yaml:"log_retention_days"`   // 0 = keep forever
	PruneIntervalHours int    `yaml:"prune_interval_hours"` // how often the pruner runs (default 6)
}

func Defaults() Config {
	return Config{
		HTTPAddr:             ":8080",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "text",
		LedgerURL:            "http://127.0.0.1:8090/exec",
		LedgerTimeoutSeconds: 30,
		MetricsEnabled:       true,
		ProxyURL:             "http://127.0.0.1:8080",
		DevLedgerAddr:        ":8090",
		DBPath:               "./data/ledger.db",
		PruneIntervalHours:   6,
	}
}

// LedgerTimeout is the bound applied to every remote ledger call.
func (c Config) LedgerTimeout() time.Duration {
	if c.LedgerTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LedgerTimeoutSeconds) * time.Second
}

// FromEnv returns the defaults overlaid with SCANNER_* environment variables.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads an optional .env file, then the YAML file named by
// SCANNER_CONFIG (if any), then environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("SCANNER_CONFIG")); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from
// the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("SCANNER_HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = getenvDefault("SCANNER_GRPC_ADDR", cfg.GRPCAddr)
	cfg.Env = normalizeEnv(getenvDefault("SCANNER_ENV", cfg.Env))
	cfg.LogLevel = getenvDefault("SCANNER_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenvDefault("SCANNER_LOG_FORMAT", cfg.LogFormat)

	cfg.LedgerURL = getenvDefault("SCANNER_LEDGER_URL", cfg.LedgerURL)
	cfg.LedgerAPIKey = getenvDefault("SCANNER_LEDGER_API_KEY", cfg.LedgerAPIKey)
	cfg.LedgerTimeoutSeconds = getenvInt("SCANNER_LEDGER_TIMEOUT_SECONDS", cfg.LedgerTimeoutSeconds)
	cfg.MetricsEnabled = getenvBool("SCANNER_METRICS_ENABLED", cfg.MetricsEnabled)
	if origins := SplitCSV(os.Getenv("SCANNER_ALLOWED_ORIGINS")); origins != nil {
		cfg.AllowedOrigins = origins
	}

	cfg.ProxyURL = getenvDefault("SCANNER_PROXY_URL", cfg.ProxyURL)
	cfg.Lang = getenvDefault("SCANNER_LANG", cfg.Lang)

	cfg.DevLedgerAddr = getenvDefault("SCANNER_DEV_LEDGER_ADDR", cfg.DevLedgerAddr)
	cfg.DBPath = getenvDefault("SCANNER_DB_PATH", cfg.DBPath)
	cfg.SeedPassword = getenvDefault("SCANNER_SEED_PASSWORD", cfg.SeedPassword)
	cfg.LogRetentionDays = getenvInt("SCANNER_LOG_RETENTION_DAYS", cfg.LogRetentionDays)
	cfg.PruneIntervalHours = getenvInt("SCANNER_PRUNE_INTERVAL_HOURS", cfg.PruneIntervalHours)
}

func normalizeEnv(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		return "dev"
	}
	return env
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

// SplitCSV splits a comma-separated list, dropping blanks.
func SplitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
