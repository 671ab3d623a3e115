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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Rules    RulesConfig    `yaml:"rules" mapstructure:"rules"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RegistryConfig configures the NPI lookup backend.
type RegistryConfig struct {
	Backend      string  `yaml:"backend" mapstructure:"backend"`
	Path         string  `yaml:"path" mapstructure:"path"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// PipelineConfig configures batch processing.
type PipelineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RulesConfig points at optional overlay files for validation heuristics
// and remediation templates. Empty paths keep the embedded defaults.
type RulesConfig struct {
	Heuristics string `yaml:"heuristics" mapstructure:"heuristics"`
	Actions    string `yaml:"actions" mapstructure:"actions"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateRPS        float64  `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file. An explicit path must exist; the working-directory
	// default is optional.
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PROVDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.dir", "runs")
	v.SetDefault("registry.backend", "none")
	v.SetDefault("registry.rate_limit_rps", 0)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_rps", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if path != "" || !notFound {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given mode depends on. Modes are "run"
// for batch commands and "serve" for the HTTP API.
func (c *Config) Validate(mode string) error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Pipeline.Workers >= 1 && c.Pipeline.Workers <= 64, "pipeline.workers must be between 1 and 64")
	check(c.Store.Dir != "", "store.dir is required")

	switch c.Registry.Backend {
	case "none", "":
	case "file", "sqlite":
		check(c.Registry.Path != "", "registry.path is required for backend "+c.Registry.Backend)
	default:
		check(false, "registry.backend must be none, file, or sqlite")
	}
	check(c.Registry.RateLimitRPS >= 0, "registry.rate_limit_rps must be >= 0")

	switch mode {
	case "run":
	case "serve":
		check(c.Server.Port > 0 && c.Server.Port <= 65535, "server.port must be between 1 and 65535")
		check(c.Server.RateRPS > 0, "server.rate_rps must be > 0")
		check(c.Server.RateBurst >= 1, "server.rate_burst must be >= 1")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
