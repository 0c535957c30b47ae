package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// EnvPrefix namespaces environment overrides: remote.url is read from
// SOLVER_REMOTE_URL.
const EnvPrefix = "SOLVER"

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RemoteConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type BreakerConfig struct {
	Threshold    int           `mapstructure:"threshold"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type LocalConfig struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DispatchConfig struct {
	Deadline time.Duration `mapstructure:"deadline"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

type Config struct {
	Environment string         `mapstructure:"environment"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Remote      RemoteConfig   `mapstructure:"remote"`
	Breaker     BreakerConfig  `mapstructure:"breaker"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Local       LocalConfig    `mapstructure:"local"`
	Dispatch    DispatchConfig `mapstructure:"dispatch"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
}

// Load reads .env from the working directory, then config.yaml from
// ./config or the working directory, then SOLVER_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(".env", "./config", ".")
}

// LoadFrom is Load with explicit locations. A missing env file or config
// file is not an error; defaults and the environment still apply.
func LoadFrom(envFile string, configPaths ...string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to read env file", slog.String("file", envFile), slog.String("error", err.Error()))
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("remote.enabled", true)
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.timeout", "5s")
	v.SetDefault("remote.max_retries", 2)
	v.SetDefault("breaker.threshold", 3)
	v.SetDefault("breaker.reset_timeout", "30s")
	v.SetDefault("cache.capacity", 256)
	v.SetDefault("local.command", "kociemba")
	v.SetDefault("local.args", []string{})
	v.SetDefault("local.timeout", "30s")
	v.SetDefault("dispatch.deadline", "10s")
	v.SetDefault("metrics.address", "")
}

// RemoteEndpoint returns the remote solver URL, or "" when the remote is
// switched off or not configured.
func (c *Config) RemoteEndpoint() string {
	if !c.Remote.Enabled {
		return ""
	}
	return c.Remote.URL
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Logging,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Remote,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RemoteConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RemoteConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.URL,
						validation.When(rc.URL != "", validation.By(validateServerURL)),
					),
					validation.Field(&rc.Timeout,
						validation.Required,
						validation.Min(100*time.Millisecond),
						validation.Max(30*time.Second),
					),
					validation.Field(&rc.MaxRetries,
						validation.Min(0),
						validation.Max(5),
					),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.Threshold,
						validation.Required,
						validation.Min(1),
						validation.Max(10),
					),
					validation.Field(&bc.ResetTimeout,
						validation.Required,
						validation.Min(time.Second),
						validation.Max(120*time.Second),
					),
				)
			}),
		),
		validation.Field(&c.Cache,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CacheConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CacheConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.Capacity,
						validation.Required,
						validation.Min(32),
						validation.Max(1024),
					),
				)
			}),
		),
		validation.Field(&c.Local,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LocalConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LocalConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Command, validation.Required),
					validation.Field(&lc.Timeout,
						validation.Required,
						validation.Min(time.Second),
						validation.Max(5*time.Minute),
					),
				)
			}),
		),
		validation.Field(&c.Dispatch,
			validation.By(func(value interface{}) error {
				dc, ok := value.(DispatchConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a DispatchConfig")
				}
				return validation.ValidateStruct(&dc,
					validation.Field(&dc.Deadline, validation.Min(time.Duration(0))),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Address,
						validation.When(mc.Address != "", validation.By(validateHostPort)),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
