// Package config provides Viper-based configuration for the offset monitor
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/constants"
	"github.com/penwyp/go-offset-monitor/internal/core/tracker"
	"github.com/spf13/viper"
)

// ErrInvalidConfig marks every configuration error; it is fatal at startup
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// EnvPrefix is the prefix of environment overrides (OFFSET_MONITOR_INTERVAL, ...)
	EnvPrefix = "OFFSET_MONITOR"

	defaultSchema      = "public"
	defaultTable       = "dset_client"
	archivalTable      = "dsetClient"
	archivalNodePrefix = "anode"
)

// Config represents the complete monitor configuration
type Config struct {
	Interval     time.Duration    `mapstructure:"interval"`
	QueryTimeout time.Duration    `mapstructure:"query_timeout"`
	Concurrency  int              `mapstructure:"concurrency"`
	Defaults     ConnDefaults     `mapstructure:"defaults"`
	Sources      []SourceConfig   `mapstructure:"sources"`
	Thresholds   ThresholdsConfig `mapstructure:"thresholds"`
	Logging      LoggingConfig    `mapstructure:"logging"`
	Output       OutputConfig     `mapstructure:"output"`
}

// ConnDefaults are applied to any source that leaves a field empty
type ConnDefaults struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SourceConfig describes one database to poll
type SourceConfig struct {
	ID       string `mapstructure:"id"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Schema   string `mapstructure:"schema"`
	Table    string `mapstructure:"table"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ThresholdsConfig overrides the freshness decay boundaries
type ThresholdsConfig struct {
	JustChanged time.Duration `mapstructure:"just_changed"`
	Recent      time.Duration `mapstructure:"recent"`
	Aging       time.Duration `mapstructure:"aging"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains terminal output settings
type OutputConfig struct {
	Colors string `mapstructure:"colors"` // auto, always, never
}

// Load reads configuration from the given viper instance, which the caller
// may already have bound to command-line flags. cfgFile, when set, is read
// instead of the default search paths.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".offset-monitor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/offset-monitor")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applySourceDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetDefaults configures default values, including the reference fleet
// of eight storage nodes and five archival nodes
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interval", constants.DefaultPollInterval)
	v.SetDefault("query_timeout", constants.DefaultQueryTimeout)
	v.SetDefault("concurrency", constants.DefaultFetchConcurrency)

	v.SetDefault("defaults.host", "localhost")
	v.SetDefault("defaults.port", 10432)
	v.SetDefault("defaults.user", "postgres")
	v.SetDefault("defaults.password", "postgres")
	v.SetDefault("defaults.sslmode", "disable")

	v.SetDefault("sources", DefaultSources())

	th := tracker.DefaultThresholds()
	v.SetDefault("thresholds.just_changed", th.JustChanged)
	v.SetDefault("thresholds.recent", th.Recent)
	v.SetDefault("thresholds.aging", th.Aging)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "~/.go-offset-monitor/logs/app.log")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", "auto")
}

// DefaultSources returns snode1..snode8 followed by anode1..anode5
func DefaultSources() []map[string]interface{} {
	sources := make([]map[string]interface{}, 0, 13)
	for i := 1; i <= 8; i++ {
		sources = append(sources, map[string]interface{}{"id": fmt.Sprintf("snode%d", i)})
	}
	for i := 1; i <= 5; i++ {
		sources = append(sources, map[string]interface{}{"id": fmt.Sprintf("anode%d", i)})
	}
	return sources
}

// SourcesFromIDs builds bare source entries for ids given on the command line
func SourcesFromIDs(ids []string) []map[string]interface{} {
	sources := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		sources = append(sources, map[string]interface{}{"id": id})
	}
	return sources
}

func (c *Config) applySourceDefaults() {
	for i := range c.Sources {
		s := &c.Sources[i]
		s.ID = strings.TrimSpace(s.ID)
		if s.Host == "" {
			s.Host = c.Defaults.Host
		}
		if s.Port == 0 {
			s.Port = c.Defaults.Port
		}
		if s.User == "" {
			s.User = c.Defaults.User
		}
		if s.Password == "" {
			s.Password = c.Defaults.Password
		}
		if s.SSLMode == "" {
			s.SSLMode = c.Defaults.SSLMode
		}
		if s.Database == "" {
			s.Database = s.ID
		}
		if s.Schema == "" {
			s.Schema = defaultSchema
		}
		if s.Table == "" {
			s.Table = defaultTable
			if strings.HasPrefix(s.ID, archivalNodePrefix) {
				s.Table = archivalTable
			}
		}
	}
}

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return invalid("source list is empty")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			return invalid("source #%d has an empty id", i+1)
		}
		if seen[s.ID] {
			return invalid("duplicate source id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Host == "" {
			return invalid("source %q has no host", s.ID)
		}
		if s.Port <= 0 || s.Port > 65535 {
			return invalid("source %q has invalid port %d", s.ID, s.Port)
		}
	}

	if c.Interval < constants.MinPollInterval {
		return invalid("interval must be at least %s, got %s", constants.MinPollInterval, c.Interval)
	}
	if c.QueryTimeout <= 0 {
		return invalid("query timeout must be positive, got %s", c.QueryTimeout)
	}
	if c.Concurrency <= 0 {
		return invalid("concurrency must be positive, got %d", c.Concurrency)
	}

	if err := c.TrackerThresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return invalid("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return invalid("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}
	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[c.Output.Colors] {
		return invalid("invalid color mode %q: must be auto, always, or never", c.Output.Colors)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// TrackerThresholds converts the configured decay boundaries
func (c *Config) TrackerThresholds() tracker.Thresholds {
	return tracker.Thresholds{
		JustChanged: c.Thresholds.JustChanged,
		Recent:      c.Thresholds.Recent,
		Aging:       c.Thresholds.Aging,
	}
}

// SourceIDs returns the configured source ids in order
func (c *Config) SourceIDs() []string {
	ids := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		ids[i] = s.ID
	}
	return ids
}

// Source looks up a source by id
func (c *Config) Source(id string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// ConnString builds a postgres URL for the source
func (s SourceConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Path:   "/" + s.Database,
	}
	if s.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{s.SSLMode}}.Encode()
	}
	return u.String()
}

// Redacted returns the connection URL with the password masked
func (s SourceConfig) Redacted() string {
	u, err := url.Parse(s.ConnString())
	if err != nil {
		return s.Host
	}
	return u.Redacted()
}
