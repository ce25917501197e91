package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full runtime configuration for the billing backend.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string // development, staging, production
	Port int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level    string // debug, info, warn, error
	Format   string // json, console
	Output   string // stdout, stderr, or a file path
	Filename string
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
	IdleTimeout     int // seconds
	ShutdownTimeout int // seconds
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled       bool
	Endpoint      string
	ServiceName   string
	SamplingRatio float64
}

// Load reads configuration from config.toml and environment variables.
// Environment variables use the BILLINGD prefix with underscores, e.g.
// BILLINGD_DATABASE_HOST overrides database.host.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BILLINGD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetInt("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Format:   v.GetString("log.format"),
			Output:   v.GetString("log.output"),
			Filename: v.GetString("log.filename"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetInt("http.read_timeout"),
			WriteTimeout:    v.GetInt("http.write_timeout"),
			IdleTimeout:     v.GetInt("http.idle_timeout"),
			ShutdownTimeout: v.GetInt("http.shutdown_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:       v.GetBool("telemetry.enabled"),
			Endpoint:      v.GetString("telemetry.endpoint"),
			ServiceName:   v.GetString("telemetry.service_name"),
			SamplingRatio: v.GetFloat64("telemetry.sampling_ratio"),
		},
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "billingd-backend"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "billingd"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}

	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.App.Name
	}
	if c.Telemetry.SamplingRatio == 0 {
		c.Telemetry.SamplingRatio = 1.0
	}
}

func (c *Config) validate() error {
	switch c.App.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid app.env %q", c.App.Env)
	}

	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("invalid app.port %d", c.App.Port)
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) exceeds database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.IsProduction() && c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the application runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN builds the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
