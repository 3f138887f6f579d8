// Package config loads grc-admin settings from defaults, a YAML file, GRC_*
// environment variables and command flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GRC"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// PolicyFile replaces the embedded authorization policy when set.
	PolicyFile string `mapstructure:"policy_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	Archive         ArchiveConfig `mapstructure:"archive"`
	NATS            NATSConfig    `mapstructure:"nats"`
}

type ArchiveConfig struct {
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ReportsConfig struct {
	Schedule string `mapstructure:"schedule"`
	Period   string `mapstructure:"period"`
}

type SchedulerConfig struct {
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Insecure     bool   `mapstructure:"insecure"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "grc.db")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "grc-admin")
	v.SetDefault("auth.token_ttl", 8*time.Hour)
	v.SetDefault("auth.policy_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_schedule", "0 3 * * *")
	v.SetDefault("audit.archive.bucket", "")
	v.SetDefault("audit.archive.prefix", "audit")
	v.SetDefault("audit.archive.region", "")
	v.SetDefault("audit.archive.profile", "")
	v.SetDefault("audit.nats.url", "")

	v.SetDefault("reports.schedule", "0 4 1 * *")
	v.SetDefault("reports.period", "monthly")

	v.SetDefault("scheduler.sweep_schedule", "@hourly")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "grc-admin")
	v.SetDefault("telemetry.insecure", true)
}

// Loader owns the viper instance so the file can be watched after Load.
type Loader struct {
	v      *viper.Viper
	logger zerolog.Logger
}

func NewLoader(logger zerolog.Logger) *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, logger: logger}
}

// BindFlag lets a command flag override key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %s is not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the .env file, then path when it is not empty, and validates
// the result. A missing .env file is only logged.
func (l *Loader) Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		l.logger.Debug().Err(err).Msg("no .env file loaded")
	}
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch calls onChange with the reloaded config whenever the config file is
// written. Invalid reloads are logged and skipped.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			l.logger.Error().Err(err).Str("file", e.Name).Msg("ignoring invalid config change")
			return
		}
		l.logger.Info().Str("file", e.Name).Msg("config reloaded")
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Audit.RetentionDays < 1 {
		errs = append(errs, errors.New("audit.retention_days must be at least 1"))
	}
	return errors.Join(errs...)
}
