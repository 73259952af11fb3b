// Package config loads the console's runtime configuration: a YAML file with
// defaults for everything, overridable per-key via LABADMIN_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Server configures the HTTP console.
type Server struct {
	Listen string `yaml:"listen"`
}

// Backend configures the REST API the console administers.
type Backend struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Log configures zerolog output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Theme selects the visual theme of the web console.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Config is the full runtime configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Backend Backend `yaml:"backend"`
	Log     Log     `yaml:"log"`
	Theme   Theme   `yaml:"theme"`

	// SchemaFile optionally points at an OpenAPI document declaring the
	// tables; empty means the built-in lab schema.
	SchemaFile string `yaml:"schema_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  Server{Listen: ":8080"},
		Backend: Backend{BaseURL: "http://localhost:5001/api", Timeout: 10 * time.Second},
		Log:     Log{Level: "info", Format: "console"},
		Theme:   Theme{Name: "default", Variant: "light"},
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment variable names recognised by applyEnv.
const (
	envListen     = "LABADMIN_LISTEN"
	envBaseURL    = "LABADMIN_API_URL"
	envTimeout    = "LABADMIN_API_TIMEOUT"
	envLogLevel   = "LABADMIN_LOG_LEVEL"
	envLogFormat  = "LABADMIN_LOG_FORMAT"
	envTheme      = "LABADMIN_THEME"
	envVariant    = "LABADMIN_THEME_VARIANT"
	envSchemaFile = "LABADMIN_SCHEMA_FILE"
)

func (c *Config) applyEnv() error {
	setString(&c.Server.Listen, envListen)
	setString(&c.Backend.BaseURL, envBaseURL)
	setString(&c.Log.Level, envLogLevel)
	setString(&c.Log.Format, envLogFormat)
	setString(&c.Theme.Name, envTheme)
	setString(&c.Theme.Variant, envVariant)
	setString(&c.SchemaFile, envSchemaFile)

	if raw, ok := os.LookupEnv(envTimeout); ok {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envTimeout, err)
		}
		c.Backend.Timeout = timeout
	}
	return nil
}

// parseTimeout accepts a Go duration ("15s") or bare seconds ("15").
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

// Validate rejects configurations the console cannot start with.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("config: server.listen is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be positive")
	}
	return nil
}
