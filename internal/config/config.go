package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smartspend-dev/smartspend/internal/ledger"
	"github.com/smartspend-dev/smartspend/internal/logging"
)

// FileName is the config file looked up in the working directory.
const FileName = "smartspend.yaml"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the top-level smartspend.yaml configuration.
type Config struct {
	DataDir     string         `yaml:"data_dir"`
	DefaultUser string         `yaml:"default_user"`
	Currency    string         `yaml:"currency"`
	Storage     StorageConfig  `yaml:"storage"`
	Summary     SummaryConfig  `yaml:"summary"`
	Analysis    AnalysisConfig `yaml:"analysis"`
	Server      ServerConfig   `yaml:"server"`
	Events      EventsConfig   `yaml:"events"`
	Log         LogConfig      `yaml:"log"`

	// dir is the directory of the loaded file; relative paths resolve
	// against it.
	dir string
}

// StorageConfig selects the ledger backend.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// SummaryConfig sizes the derived parts of a summary.
type SummaryConfig struct {
	TopN         int `yaml:"top_n"`
	RecentWindow int `yaml:"recent_window"`
}

// AnalysisConfig configures the language model. The key itself never
// lives in the file, only the name of the variable holding it.
type AnalysisConfig struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	APIKeyEnv   string  `yaml:"api_key_env"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// EventsConfig configures transaction notifications. An empty URL
// disables them.
type EventsConfig struct {
	AMQPURL    string `yaml:"amqp_url,omitempty"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a smartspend.yaml file from disk. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	cfg.dir = abs
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		DataDir:     "data",
		DefaultUser: "default",
		Currency:    money.USD,
		Storage: StorageConfig{
			Backend:    BackendFile,
			SQLitePath: filepath.Join("data", "smartspend.db"),
		},
		Summary: SummaryConfig{
			TopN:         5,
			RecentWindow: 10,
		},
		Analysis: AnalysisConfig{
			Model:       "gemini-2.5-flash-lite",
			Temperature: 0.2,
			APIKeyEnv:   "GOOGLE_API_KEY",
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		Events: EventsConfig{
			Exchange:   "smartspend",
			RoutingKey: "transaction.recorded",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.DataDir == "" {
		problems = append(problems, "data_dir cannot be empty")
	}
	if err := ledger.ValidateUserID(c.DefaultUser); err != nil {
		problems = append(problems, fmt.Sprintf("invalid default_user: %v", err))
	}
	if money.GetCurrency(c.Currency) == nil {
		problems = append(problems, fmt.Sprintf("unknown currency %q", c.Currency))
	}

	switch c.Storage.Backend {
	case BackendFile:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "storage.sqlite_path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of [%s %s]", c.Storage.Backend, BackendFile, BackendSQLite))
	}

	if c.Summary.TopN < 1 {
		problems = append(problems, fmt.Sprintf("invalid summary.top_n %d: must be at least 1", c.Summary.TopN))
	}
	if c.Summary.RecentWindow < 1 {
		problems = append(problems, fmt.Sprintf("invalid summary.recent_window %d: must be at least 1", c.Summary.RecentWindow))
	}

	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("invalid analysis.temperature %v: must be between 0 and 2", c.Analysis.Temperature))
	}
	if c.Analysis.APIKeyEnv == "" {
		problems = append(problems, "analysis.api_key_env cannot be empty")
	}

	if c.Server.Addr == "" {
		problems = append(problems, "server.addr cannot be empty")
	}

	if c.Events.AMQPURL != "" {
		if u, err := url.Parse(c.Events.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events.exchange cannot be empty when events.amqp_url is set")
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Dir returns the directory relative paths resolve against.
func (c *Config) Dir() string {
	return c.dir
}

// Resolve makes a configured path absolute relative to the config
// directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// DataPath is the resolved data directory.
func (c *Config) DataPath() string {
	return c.Resolve(c.DataDir)
}

// SQLitePath is the resolved SQLite database path.
func (c *Config) SQLitePath() string {
	return c.Resolve(c.Storage.SQLitePath)
}

// APIKey returns the analysis API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(c.Analysis.APIKeyEnv)
}

// LoadEnv loads a .env file from dir into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
