package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"adaptive-voice/internal/app/engine"
	"adaptive-voice/internal/app/network"
	"adaptive-voice/internal/app/recognition"
)

// Config is the full runtime configuration loaded from YAML. String values of
// the form ${VAR} are expanded from the environment after parsing.
type Config struct {
	Server  ServerConfig         `yaml:"server"`
	Cloud   engine.CloudConfig   `yaml:"cloud"`
	Network network.TesterConfig `yaml:"network"`
	Cache   CacheConfig          `yaml:"cache"`
	Options recognition.Options  `yaml:"options"`
	Logging LoggingConfig        `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	Environment  string        `yaml:"environment"`
}

// CacheConfig sizes the per-session transcript cache.
type CacheConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig selects the zap preset.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Load reads and validates a YAML config file. A missing path yields the
// defaults so the server can boot with nothing but environment variables.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = DefaultPath()
	}
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnvOverrides()
			return config, config.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	config.expandEnvironmentVariables()
	config.applyEnvOverrides()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Save writes the configuration to a YAML file, creating the directory.
func Save(config *Config, configPath string) error {
	configPath = os.ExpandEnv(configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			Environment:  "development",
		},
		Cloud: engine.CloudConfig{
			Provider: engine.CloudProviderOpenAI,
			APIKey:   "${OPENAI_API_KEY}",
		},
		Network: network.TesterConfig{
			ProbeURL: "https://www.gstatic.com/generate_204",
			Samples:  3,
		},
		Cache: CacheConfig{
			MaxEntries:    50,
			TTL:           5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Options: recognition.DefaultOptions(),
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// DefaultPath returns the config file location: AVR_CONFIG_PATH when set,
// otherwise ~/.adaptive-voice/config.yaml.
func DefaultPath() string {
	if path := os.Getenv("AVR_CONFIG_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".adaptive-voice", "config.yaml")
}

// expandEnvironmentVariables resolves ${VAR} placeholders in the string
// settings that commonly carry secrets or host-specific values.
func (c *Config) expandEnvironmentVariables() {
	c.Cloud.APIKey = expandEnv(c.Cloud.APIKey)
	c.Cloud.Endpoint = expandEnv(c.Cloud.Endpoint)
	c.Network.ProbeURL = expandEnv(c.Network.ProbeURL)
	for key, value := range c.Cloud.Headers {
		c.Cloud.Headers[key] = expandEnv(value)
	}
}

// applyEnvOverrides lets the standard variables win over file values, so a
// deployment can rotate keys without touching config files.
func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" && c.Cloud.APIKey == "" {
		c.Cloud.APIKey = key
	}
	if endpoint := os.Getenv("AVR_CLOUD_ENDPOINT"); endpoint != "" {
		c.Cloud.Endpoint = endpoint
	}
	if port := os.Getenv("AVR_PORT"); port != "" {
		c.Server.Port = port
	}
}

func (c *Config) setDefaults() {
	defaults := Default()

	if c.Server.Port == "" {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if c.Network.ProbeURL == "" {
		c.Network.ProbeURL = defaults.Network.ProbeURL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = defaults.Cache.MaxEntries
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = defaults.Cache.SweepInterval
	}
	if c.Options == (recognition.Options{}) {
		c.Options = recognition.DefaultOptions()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = defaults.Logging.Encoding
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Cloud.Provider {
	case "", engine.CloudProviderHTTP, engine.CloudProviderOpenAI:
	default:
		return fmt.Errorf("unknown cloud provider %q", c.Cloud.Provider)
	}

	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log encoding %q", c.Logging.Encoding)
	}

	if err := c.Options.Validate(); err != nil {
		return err
	}
	return nil
}

// expandEnv resolves a ${VAR} placeholder; any other value passes through
// untouched, including literal dollar signs.
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return os.Getenv(strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}"))
	}
	return value
}
