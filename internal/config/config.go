package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SearchConfig configures the telephone-directory candidate source.
type SearchConfig struct {
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestIntervalMs int    `yaml:"request_interval_ms" mapstructure:"request_interval_ms"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int    `yaml:"max_retries" mapstructure:"max_retries"`
	CacheSize         int    `yaml:"cache_size" mapstructure:"cache_size"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// MatchConfig holds the acceptance thresholds for candidate selection.
type MatchConfig struct {
	AddressThreshold float64 `yaml:"address_threshold" mapstructure:"address_threshold"`
	NameThreshold    float64 `yaml:"name_threshold" mapstructure:"name_threshold"`
}

// ServerConfig configures the HTTP scoring service.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ORGLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "orglink.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.request_interval_ms", 500)
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.cache_size", 256)
	v.SetDefault("search.user_agent", "orglink/1.0")
	v.SetDefault("match.address_threshold", 0.7)
	v.SetDefault("match.name_threshold", 0.7)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. Every problem found is
// reported in one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "link":
		if c.Search.BaseURL == "" {
			problems = append(problems, "search.base_url is required")
		}
		if c.Search.RequestIntervalMs < 0 {
			problems = append(problems, "search.request_interval_ms must be >= 0")
		}
		if c.Search.TimeoutSecs <= 0 {
			problems = append(problems, "search.timeout_secs must be > 0")
		}
		if c.Search.MaxRetries < 0 {
			problems = append(problems, "search.max_retries must be >= 0")
		}
		problems = append(problems, c.storeProblems()...)
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	case "runs":
		problems = append(problems, c.storeProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !inUnitRange(c.Match.AddressThreshold) {
		problems = append(problems, "match.address_threshold must be between 0 and 1")
	}
	if !inUnitRange(c.Match.NameThreshold) {
		problems = append(problems, "match.name_threshold must be between 0 and 1")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid %s configuration: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	return problems
}

func inUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
