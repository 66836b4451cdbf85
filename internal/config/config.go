// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/zorak1103/conman/internal/errors"
	"github.com/zorak1103/conman/internal/logger"
)

// EnvPrefix is the prefix of all environment variable overrides (CONMAN_CLIENT_BASE_URL, ...).
const EnvPrefix = "CONMAN"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Docker       DockerConfig       `mapstructure:"docker"`
	Client       ClientConfig       `mapstructure:"client"`
	Settings     SettingsConfig     `mapstructure:"settings"`
	Notification NotificationConfig `mapstructure:"notification"`
	Log          logger.Config      `mapstructure:"log"`

	// ConfigFilePath stores the path to the loaded config file (not marshaled from YAML)
	ConfigFilePath string `mapstructure:"-"`
}

// ServerConfig contains settings for `conman serve`
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// DockerConfig contains Docker-specific settings
type DockerConfig struct {
	SocketPath string `mapstructure:"socket_path"`
}

// ClientConfig describes how the dashboard reaches the workload API
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ContainersPath string        `mapstructure:"containers_path"`
	ServicesPath   string        `mapstructure:"services_path"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SettingsConfig locates the persisted dashboard settings
type SettingsConfig struct {
	File string `mapstructure:"file"`
}

// NotificationConfig contains notification settings
type NotificationConfig struct {
	ShoutrrURL string `mapstructure:"shoutrrr_url"` // Shoutrrr URL format
	Enabled    bool   `mapstructure:"enabled"`
}

// autoDetectDockerSocket determines the Docker socket path based on environment and platform.
func autoDetectDockerSocket() string {
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return host
	}
	if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		return "unix:///var/run/docker.sock"
	}
	// Default to Windows named pipe if Unix socket not found
	return "npipe:////./pipe/docker_engine"
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/conman")
		v.AddConfigPath("/etc/conman")
	}

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, &apperrors.ConfigurationError{ConfigPath: configFile, Err: fmt.Errorf("error reading config file: %w", err)}
		}
	}

	return decode(v)
}

// LoadFromViper reads configuration from the global viper instance (for testing)
func LoadFromViper() (*Config, error) {
	return decode(viper.GetViper())
}

func decode(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := v.ConfigFileUsed()
	if source == "" {
		source = "(defaults/environment)"
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &apperrors.ConfigurationError{ConfigPath: source, Err: fmt.Errorf("error unmarshaling config: %w", err)}
	}

	cfg.ConfigFilePath = v.ConfigFileUsed()

	if cfg.Docker.SocketPath == "" {
		cfg.Docker.SocketPath = autoDetectDockerSocket()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")

	// Empty value keeps AutomaticEnv working; resolved in decode
	v.SetDefault("docker.socket_path", "")

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.containers_path", "/api/containers")
	v.SetDefault("client.services_path", "/api/services")
	v.SetDefault("client.poll_interval", "1s")
	v.SetDefault("client.request_timeout", "5s")

	v.SetDefault("settings.file", "./settings.json")

	v.SetDefault("notification.shoutrrr_url", "")
	v.SetDefault("notification.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatConsole)
	v.SetDefault("log.file", "")
	v.SetDefault("log.no_color", false)
}

// Validate ensures all required fields are set and values are within valid ranges.
// Failures are reported as *apperrors.ConfigurationError naming the offending key.
func (c *Config) Validate() error {
	configSource := c.ConfigFilePath
	if configSource == "" {
		configSource = "(defaults/environment)"
	}

	fail := func(key string, err error) error {
		return &apperrors.ConfigurationError{ConfigPath: configSource, Key: key, Err: err}
	}

	requiredFields := []struct {
		key   string
		value string
	}{
		{"server.listen", c.Server.Listen},
		{"docker.socket_path", c.Docker.SocketPath},
		{"client.base_url", c.Client.BaseURL},
		{"client.containers_path", c.Client.ContainersPath},
		{"client.services_path", c.Client.ServicesPath},
		{"settings.file", c.Settings.File},
	}
	for _, field := range requiredFields {
		if strings.TrimSpace(field.value) == "" {
			return fail(field.key, errors.New("value is required"))
		}
	}

	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail("client.base_url", fmt.Errorf("must be an absolute http(s) URL, got %q", c.Client.BaseURL))
	}

	if c.Client.PollInterval <= 0 {
		return fail("client.poll_interval", fmt.Errorf("must be positive, got %s", c.Client.PollInterval))
	}
	if c.Client.RequestTimeout <= 0 {
		return fail("client.request_timeout", fmt.Errorf("must be positive, got %s", c.Client.RequestTimeout))
	}

	if c.Notification.Enabled && strings.TrimSpace(c.Notification.ShoutrrURL) == "" {
		return fail("notification.shoutrrr_url", errors.New("required when notifications are enabled (e.g., slack://token@channel)"))
	}

	if err := c.Log.Validate(); err != nil {
		return fail("log", err)
	}

	return nil
}
