package quartus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/transport"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "QUARTUSTCL"

// Config holds session configuration.
type Config struct {
	// Args is the shell command line.
	// Default: ["quartus_stp", "-s"]
	Args []string `json:"args" yaml:"args" toml:"args" jsonschema_description:"Shell command line"`

	// WorkDir is the working directory of the shell.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir" toml:"work_dir" split_words:"true"`

	// Env provides additional environment variables for the shell.
	Env map[string]string `json:"env,omitempty" yaml:"env" toml:"env"`

	// Debug mirrors all shell traffic to stderr.
	Debug bool `json:"debug,omitempty" yaml:"debug" toml:"debug"`

	// KillTimeout is how long Close waits for the shell to exit on its own.
	// Default: 5 seconds.
	KillTimeout time.Duration `json:"kill_timeout,omitempty" yaml:"kill_timeout" toml:"kill_timeout" split_words:"true"`

	// SentinelPrefix overrides the per-session sentinel prefix. Letters,
	// digits and underscores only.
	SentinelPrefix string `json:"sentinel_prefix,omitempty" yaml:"sentinel_prefix" toml:"sentinel_prefix" split_words:"true"`

	// ParseDepth is the list depth applied to Invoke results when a request
	// does not set one. 0 returns raw strings.
	ParseDepth int `json:"parse_depth,omitempty" yaml:"parse_depth" toml:"parse_depth" split_words:"true"`

	// LogLimit caps how many runes of each command and reply line appear
	// in debug logs. 0 keeps the default of 512; negative disables it.
	LogLimit int `json:"log_limit,omitempty" yaml:"log_limit" toml:"log_limit" split_words:"true"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Args:        []string{"quartus_stp", "-s"},
		KillTimeout: transport.DefaultKillTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Args) == 0 || c.Args[0] == "" {
		return fmt.Errorf("args is required")
	}
	if c.KillTimeout < 0 {
		return fmt.Errorf("kill_timeout must be >= 0, got %v", c.KillTimeout)
	}
	if c.ParseDepth < 0 {
		return fmt.Errorf("parse_depth must be >= 0, got %d", c.ParseDepth)
	}
	if c.SentinelPrefix != "" && !protocol.ValidPrefix(c.SentinelPrefix) {
		return fmt.Errorf("sentinel_prefix %q may only contain letters, digits and underscores", c.SentinelPrefix)
	}
	return nil
}

// WithDefaults returns a copy of the config with defaults applied for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if len(c.Args) == 0 {
		c.Args = defaults.Args
	}
	if c.KillTimeout == 0 {
		c.KillTimeout = defaults.KillTimeout
	}

	return c
}

// LoadFromEnv overlays config fields from environment variables. Variables
// use the QUARTUSTCL_ prefix and take precedence over existing values.
//
// Supported variables:
//   - QUARTUSTCL_ARGS: comma-separated command line (e.g. "tclsh")
//   - QUARTUSTCL_WORK_DIR: working directory
//   - QUARTUSTCL_ENV: comma-separated KEY:VALUE pairs
//   - QUARTUSTCL_DEBUG: mirror traffic to stderr
//   - QUARTUSTCL_KILL_TIMEOUT: duration (e.g. "10s")
//   - QUARTUSTCL_SENTINEL_PREFIX: sentinel prefix
//   - QUARTUSTCL_PARSE_DEPTH: default list depth
//   - QUARTUSTCL_LOG_LIMIT: runes of traffic kept per log attribute
func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("load config from env: %w", err)
	}
	return nil
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	return cfg, err
}

// LoadConfig reads a config file. The format follows the extension:
// .yaml/.yml, .toml or .json. Unset fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// configJSON has Config's fields without its JSON methods.
type configJSON Config

// MarshalJSON writes KillTimeout as a duration string ("5s"), the same form
// the YAML and TOML files use.
func (c Config) MarshalJSON() ([]byte, error) {
	aux := struct {
		configJSON
		KillTimeout string `json:"kill_timeout,omitempty"`
	}{configJSON: configJSON(c)}
	if c.KillTimeout != 0 {
		aux.KillTimeout = c.KillTimeout.String()
	}
	return json.Marshal(aux)
}

// UnmarshalJSON reads kill_timeout as a duration string ("10s"). A bare
// number is taken as nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	aux := struct {
		*configJSON
		KillTimeout json.RawMessage `json:"kill_timeout,omitempty"`
	}{configJSON: (*configJSON)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.KillTimeout) == 0 || string(aux.KillTimeout) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.KillTimeout, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("kill_timeout: %w", err)
		}
		c.KillTimeout = d
		return nil
	}
	var n int64
	if err := json.Unmarshal(aux.KillTimeout, &n); err != nil {
		return fmt.Errorf("kill_timeout: want a duration string or nanoseconds, got %s", aux.KillTimeout)
	}
	c.KillTimeout = time.Duration(n)
	return nil
}

// JSONSchemaExtend documents kill_timeout as a duration string.
func (Config) JSONSchemaExtend(s *jsonschema.Schema) {
	if p, ok := s.Properties.Get("kill_timeout"); ok {
		p.Type = "string"
		p.Description = `Duration such as "10s"`
	}
}

// ConfigSchema returns the JSON Schema describing Config.
func ConfigSchema() ([]byte, error) {
	schema := jsonschema.Reflect(&Config{})
	schema.Title = "quartustcl session configuration"
	return json.MarshalIndent(schema, "", "  ")
}
