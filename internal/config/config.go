// Package config loads Postify CLI settings from defaults, a YAML file, a
// .env file, environment variables and command flags, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// Environment variables read by Load
const (
	EnvHome      = "POSTIFY_HOME"
	EnvAPIURL    = "POSTIFY_API_URL"
	EnvStorage   = "POSTIFY_STORAGE"
	EnvRedisAddr = "POSTIFY_REDIS_ADDR"
	EnvLogLevel  = "POSTIFY_LOG_LEVEL"
)

// Storage driver names
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// DefaultAPIURL is where the Postify backend listens in development
const DefaultAPIURL = "http://localhost:5001"

// Config is the full CLI configuration
type Config struct {
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Navigation NavigationConfig `yaml:"navigation"`
	Search     SearchConfig     `yaml:"search"`
	Log        LogConfig        `yaml:"log"`

	// Home is the directory holding config.yaml and local session storage.
	// It is never read from the YAML file itself.
	Home string `yaml:"-"`
}

// APIConfig points the client at the remote API
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// StorageConfig selects the durable session storage driver
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	RedisDB     int    `yaml:"redis_db,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

// NavigationConfig configures the protected navigation gate
type NavigationConfig struct {
	LoginPath      string   `yaml:"login_path"`
	DefaultLanding string   `yaml:"default_landing"`
	Gated          []string `yaml:"gated"`
}

// SearchConfig configures the interactive explore view
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures diagnostics on stderr
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver:      DriverFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "postify:",
		},
		Navigation: NavigationConfig{
			LoginPath:      "/login",
			DefaultLanding: "/dashboard",
			Gated:          []string{"/dashboard", "/createpost"},
		},
		Search: SearchConfig{
			Debounce: 600 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Home: DefaultHome(),
	}
}

// DefaultHome returns $POSTIFY_HOME or ~/.postify
func DefaultHome() string {
	if h := os.Getenv(EnvHome); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postify"
	}
	return filepath.Join(home, ".postify")
}

// FilePath returns the config file location under home
func FilePath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Options control Load
type Options struct {
	// Path overrides the config file location. An explicitly named file
	// must exist; the default location is optional.
	Path string
	// Home overrides the home directory.
	Home string
	// EnvFile is the dotenv file to read; empty means ".env".
	EnvFile string
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, YAML file, .env, process environment.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already present in the environment
	_ = godotenv.Load(envFile)

	cfg := Default()
	if opts.Home != "" {
		cfg.Home = opts.Home
	} else {
		cfg.Home = DefaultHome()
	}

	path := opts.Path
	explicit := path != ""
	if !explicit {
		path = FilePath(cfg.Home)
	}

	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.NewFileNotFoundError(path)
		}
		return errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.NewFileUnmarshalError(path, "YAML", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("POSTIFY_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewConfigInvalidError("POSTIFY_REDIS_DB", err.Error())
		}
		c.Storage.RedisDB = db
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewConfigInvalidError("api.base_url", fmt.Sprintf("%q is not an absolute URL", c.API.BaseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewConfigInvalidError("api.base_url", "scheme must be http or https")
	}
	if c.API.Timeout <= 0 {
		return errors.NewConfigInvalidError("api.timeout", "must be positive")
	}

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.NewConfigInvalidError("storage.redis_addr", "required for the redis driver")
		}
	default:
		return errors.NewConfigInvalidError("storage.driver",
			fmt.Sprintf("unknown driver %q (supported: file, sqlite, redis, memory)", c.Storage.Driver))
	}

	for name, p := range map[string]string{
		"navigation.login_path":      c.Navigation.LoginPath,
		"navigation.default_landing": c.Navigation.DefaultLanding,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.NewConfigInvalidError(name, fmt.Sprintf("%q must start with /", p))
		}
	}
	for _, g := range c.Navigation.Gated {
		if !strings.HasPrefix(g, "/") {
			return errors.NewConfigInvalidError("navigation.gated", fmt.Sprintf("%q must start with /", g))
		}
	}

	if c.Search.Debounce < 0 {
		return errors.NewConfigInvalidError("search.debounce", "must not be negative")
	}
	return nil
}

// StoragePath returns the file used by the file or sqlite driver
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(c.Home, "postify.db")
	}
	return filepath.Join(c.Home, "session.json")
}

// Save writes the configuration as YAML to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigLoad, "failed to encode config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config file", err)
	}
	return nil
}
