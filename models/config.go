package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. JIRA_HELPER_JIRA_HOST
const EnvPrefix = "JIRA_HELPER"

// DefaultConfigName is the file name (without extension) searched when no explicit path is given
const DefaultConfigName = ".jira"

const redacted = "********"

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// AuthType selects how requests to Jira are authenticated
type AuthType string

const (
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// String returns the string representation of LogFormat
func (f LogFormat) String() string {
	return string(f)
}

// IsValid checks if the LogLevel is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// IsValid checks if the LogFormat is valid
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatConsole, LogFormatJSON:
		return true
	default:
		return false
	}
}

// IsValid checks if the AuthType is valid
func (a AuthType) IsValid() bool {
	switch a {
	case AuthTypeBasic, AuthTypeBearer:
		return true
	default:
		return false
	}
}

// UnmarshalYAML implements custom unmarshaling for LogLevel
func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	level := LogLevel(strings.ToLower(str))
	if !level.IsValid() {
		return fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", str)
	}

	*l = level
	return nil
}

// UnmarshalYAML implements custom unmarshaling for LogFormat
func (f *LogFormat) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	format := LogFormat(strings.ToLower(str))
	if !format.IsValid() {
		return fmt.Errorf("invalid log format: %s. Valid options are: console, json", str)
	}

	*f = format
	return nil
}

// JiraConfig holds everything needed to reach the Jira server
type JiraConfig struct {
	// Host is either a bare hostname (combined with Protocol, Port and Base) or a full URL
	Host           string   `yaml:"host" mapstructure:"host"`
	Protocol       string   `yaml:"protocol" mapstructure:"protocol" default:"https"`
	Port           int      `yaml:"port,omitempty" mapstructure:"port"`
	Base           string   `yaml:"base,omitempty" mapstructure:"base"`
	APIVersion     string   `yaml:"api_version" mapstructure:"api_version" default:"2"`
	Username       string   `yaml:"username" mapstructure:"username"`
	Password       string   `yaml:"password,omitempty" mapstructure:"password"`
	APIToken       string   `yaml:"api_token,omitempty" mapstructure:"api_token"`
	AuthType       AuthType `yaml:"auth_type" mapstructure:"auth_type" default:"basic"`
	DefaultProject string   `yaml:"default_project,omitempty" mapstructure:"default_project"`
	StrictSSL      bool     `yaml:"strict_ssl" mapstructure:"strict_ssl" default:"true"`
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds" default:"30"`
	MaxResults     int      `yaml:"max_results" mapstructure:"max_results" default:"50"`
}

// GitConfig configures how commit history is read
type GitConfig struct {
	CLIPath  string `yaml:"cli_path" mapstructure:"cli_path" default:"git"`
	LogLimit int    `yaml:"log_limit" mapstructure:"log_limit" default:"50"`
	// LogFilters are extra git log arguments applied to every listing, e.g. --no-merges.
	// From the environment they are given comma separated.
	LogFilters []string `yaml:"log_filters,omitempty" mapstructure:"log_filters"`
}

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Logging struct {
		Level  LogLevel  `yaml:"level" mapstructure:"level" default:"info"`
		Format LogFormat `yaml:"format" mapstructure:"format" default:"console"`
	} `yaml:"logging" mapstructure:"logging"`

	Jira JiraConfig `yaml:"jira" mapstructure:"jira"`
	Git  GitConfig  `yaml:"git" mapstructure:"git"`
}

// setDefaults registers every key with viper so environment overrides resolve during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", string(LogLevelInfo))
	v.SetDefault("logging.format", string(LogFormatConsole))

	v.SetDefault("jira.host", "")
	v.SetDefault("jira.protocol", "https")
	v.SetDefault("jira.port", 0)
	v.SetDefault("jira.base", "")
	v.SetDefault("jira.api_version", "2")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.password", "")
	v.SetDefault("jira.api_token", "")
	v.SetDefault("jira.auth_type", string(AuthTypeBasic))
	v.SetDefault("jira.default_project", "")
	v.SetDefault("jira.strict_ssl", true)
	v.SetDefault("jira.timeout_seconds", 30)
	v.SetDefault("jira.max_results", 50)

	v.SetDefault("git.cli_path", "git")
	v.SetDefault("git.log_limit", 50)
	v.SetDefault("git.log_filters", []string{})
}

// lowerStringHook normalizes case for the string enum types before validation
func lowerStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	switch t {
	case reflect.TypeOf(LogLevel("")), reflect.TypeOf(LogFormat("")), reflect.TypeOf(AuthType("")):
		return strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())), nil
	}
	return data, nil
}

// LoadConfig loads configuration from an optional YAML file, JIRA_HELPER_* environment variables and defaults.
// When configPath is empty, .jira.yaml is searched in the working directory and then in $HOME.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Clean(home))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		lowerStringHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&config, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration. A missing Jira host is not an error here:
// the connection built from it simply reports itself as unusable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateJira()
}

// validateLogging ensures logging configuration is valid
func (c *Config) validateLogging() error {
	if !c.Logging.Level.IsValid() {
		return fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", c.Logging.Level)
	}
	if !c.Logging.Format.IsValid() {
		return fmt.Errorf("invalid log format: %s. Valid options are: console, json", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateJira() error {
	if !c.Jira.AuthType.IsValid() {
		return fmt.Errorf("invalid jira.auth_type: %s. Valid options are: basic, bearer", c.Jira.AuthType)
	}
	if c.Jira.AuthType == AuthTypeBearer && c.Jira.APIToken == "" {
		return errors.New("jira.api_token is required when jira.auth_type is bearer")
	}
	// comments are posted as plain text, which only REST v2 accepts
	if c.Jira.APIVersion != "2" && c.Jira.APIVersion != "latest" {
		return fmt.Errorf("unsupported jira.api_version: %s. Valid options are: 2, latest", c.Jira.APIVersion)
	}
	if c.Jira.Port < 0 || c.Jira.Port > 65535 {
		return fmt.Errorf("invalid jira.port: %d", c.Jira.Port)
	}
	if c.Jira.TimeoutSeconds < 0 {
		return errors.New("jira.timeout_seconds cannot be negative")
	}
	if c.Jira.MaxResults <= 0 {
		return errors.New("jira.max_results must be positive")
	}
	if c.Git.LogLimit <= 0 {
		return errors.New("git.log_limit must be positive")
	}
	return nil
}

// Redacted returns a copy of the configuration with credentials masked
func (c Config) Redacted() Config {
	if c.Jira.Password != "" {
		c.Jira.Password = redacted
	}
	if c.Jira.APIToken != "" {
		c.Jira.APIToken = redacted
	}
	return c
}

// ToYAML renders the redacted configuration as YAML
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
