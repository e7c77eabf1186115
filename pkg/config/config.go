// Package config loads sponsorwatch configuration from, in order of
// precedence: command-line flags, environment variables, .env files, an
// optional YAML config file and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
	"github.com/Sternrassler/sponsorwatch/pkg/poller"
	"github.com/Sternrassler/sponsorwatch/pkg/sink"
)

// Configuration keys. Flags use the same names; environment variables are
// the upper-cased key with the EnvPrefix, e.g. SPONSORWATCH_REGION_ID.
const (
	KeyConfigFile   = "config"
	KeyCredential   = "credential"
	KeyBaseURL      = "base-url"
	KeyUserAgent    = "user-agent"
	KeyTimeout      = "timeout"
	KeyLimit        = "limit"
	KeyRegionID     = "region-id"
	KeySortName     = "sort"
	KeyLogLevel     = "log-level"
	KeyLogPretty    = "log-pretty"
	KeyMetricsAddr  = "metrics-addr"
	KeyRedisAddr    = "redis-addr"
	KeyRedisStream  = "redis-stream"
	KeyRedisMaxLen  = "redis-max-len"
	KeyKafkaBrokers = "kafka-brokers"
	KeyKafkaTopic   = "kafka-topic"
)

const (
	// EnvPrefix prefixes every environment variable read by viper.
	EnvPrefix = "SPONSORWATCH"

	// CredentialEnv holds the session cookie value.
	CredentialEnv = "ROBLOSECURITY"

	// DefaultUserAgent identifies sponsorwatch to the catalog.
	DefaultUserAgent = "sponsorwatch/0.1.0"
)

// EnvFiles are loaded before the environment is read; earlier files win
// because godotenv never overrides variables that are already set.
var EnvFiles = []string{".env.local", ".env"}

// Config is the resolved sponsorwatch configuration.
type Config struct {
	// Catalog
	Credential string
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration

	// Poll loop
	Limit    *int
	RegionID *int
	SortName string

	// Logging
	LogLevel  string
	LogPretty bool

	// Metrics listener, disabled when empty
	MetricsAddr string

	// Redis stream sink, disabled when RedisAddr is empty
	RedisAddr   string
	RedisStream string
	RedisMaxLen int64

	// Kafka sink, disabled when KafkaBrokers is empty
	KafkaBrokers []string
	KafkaTopic   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, catalog.DefaultBaseURL)
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeySortName, poller.DefaultSortName)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRedisStream, sink.DefaultStream)
	v.SetDefault(KeyKafkaTopic, "sponsorwatch.discoveries")
}

// Load reads .env files, binds the environment and an optional config file
// into v and resolves the configuration. Flags must already be bound to v.
func Load(v *viper.Viper) (*Config, error) {
	loadEnvFiles(EnvFiles)

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyCredential, CredentialEnv, EnvPrefix+"_CREDENTIAL"); err != nil {
		return nil, fmt.Errorf("bind credential env: %w", err)
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	return FromViper(v)
}

// FromViper resolves the configuration from an already populated viper.
// Numeric settings that do not parse are errors rather than zero.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Credential:   strings.TrimSpace(v.GetString(KeyCredential)),
		BaseURL:      v.GetString(KeyBaseURL),
		UserAgent:    v.GetString(KeyUserAgent),
		SortName:     v.GetString(KeySortName),
		LogLevel:     v.GetString(KeyLogLevel),
		LogPretty:    v.GetBool(KeyLogPretty),
		MetricsAddr:  v.GetString(KeyMetricsAddr),
		RedisAddr:    v.GetString(KeyRedisAddr),
		RedisStream:  v.GetString(KeyRedisStream),
		KafkaBrokers: splitList(v.GetStringSlice(KeyKafkaBrokers)),
		KafkaTopic:   v.GetString(KeyKafkaTopic),
	}

	var err error
	if raw := v.Get(KeyTimeout); raw != nil {
		if cfg.Timeout, err = cast.ToDurationE(raw); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KeyTimeout, err)
		}
	}
	if raw := v.Get(KeyRedisMaxLen); raw != nil {
		if cfg.RedisMaxLen, err = cast.ToInt64E(raw); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KeyRedisMaxLen, err)
		}
	}
	if cfg.Limit, err = optionalInt(v, KeyLimit); err != nil {
		return nil, err
	}
	if cfg.RegionID, err = optionalInt(v, KeyRegionID); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// optionalInt returns nil when key is unset.
func optionalInt(v *viper.Viper, key string) (*int, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &n, nil
}

// Validate checks the configuration for fatal startup errors.
func (c *Config) Validate() error {
	if c.Credential == "" {
		return fmt.Errorf("%w: set %s in the environment or a .env file", catalog.ErrMissingCredential, CredentialEnv)
	}
	if c.Limit != nil && *c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0 (got %d)", *c.Limit)
	}
	if c.RegionID != nil && *c.RegionID < 0 {
		return fmt.Errorf("region-id must be >= 0 (got %d)", *c.RegionID)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", c.Timeout)
	}
	if c.RedisMaxLen < 0 {
		return fmt.Errorf("redis-max-len must be >= 0 (got %d)", c.RedisMaxLen)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("kafka-topic is required when kafka-brokers is set")
	}
	return nil
}

// CatalogConfig returns the catalog client configuration.
func (c *Config) CatalogConfig() catalog.Config {
	cfg := catalog.DefaultConfig(c.Credential)
	cfg.BaseURL = c.BaseURL
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.Timeout
	return cfg
}

// PollerConfig returns the poll loop configuration.
func (c *Config) PollerConfig() poller.Config {
	return poller.Config{
		Limit:    c.Limit,
		RegionID: c.RegionID,
		SortName: c.SortName,
	}
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", file, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".sponsorwatch")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// splitList flattens comma separated entries, as given in environment
// variables, into a clean list.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
