package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Credential CredentialConfig `mapstructure:"credential"`
	Seed       SeedConfig       `mapstructure:"seed"`
	Events     EventsConfig     `mapstructure:"events"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" valid:"required,port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" valid:"in(debug|info|warn|error)"`
	Format string `mapstructure:"format" valid:"in(json|text)"` // json or text
}

type CredentialConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// SeedConfig selects where the ledger's accounts come from at startup
type SeedConfig struct {
	Source   string         `mapstructure:"source" valid:"in(config|postgres)"`
	Accounts []SeedAccount  `mapstructure:"accounts" valid:"-"`
	Database DatabaseConfig `mapstructure:"database"`
}

// SeedAccount is an account provisioned from the config file.
// Exactly one of Credential (plaintext PIN, hashed on load) and CredentialHash must be set.
type SeedAccount struct {
	ID             string `mapstructure:"id"`
	CardNumber     string `mapstructure:"card_number"`
	Credential     string `mapstructure:"credential"`
	CredentialHash string `mapstructure:"credential_hash"`
	Balance        string `mapstructure:"balance"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type EventsConfig struct {
	NatsURL    string `mapstructure:"nats_url"`
	Subject    string `mapstructure:"subject" valid:"required"`
	ClientName string `mapstructure:"client_name"`
}

// Load reads configuration from defaults, an optional YAML file and the environment.
// Environment variables win over the file; a .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Seed.Source == "postgres" && (c.Seed.Database.Host == "" || c.Seed.Database.Database == "") {
		return fmt.Errorf("invalid config: seed.database host and name are required for the postgres seed source")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// SlogLevel converts the configured level name to a slog.Level
func (c LoggerConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("credential.bcrypt_cost", 10)

	v.SetDefault("seed.source", "config")
	v.SetDefault("seed.database.host", "localhost")
	v.SetDefault("seed.database.port", "5432")
	v.SetDefault("seed.database.user", "postgres")
	v.SetDefault("seed.database.password", "postgres")
	v.SetDefault("seed.database.name", "bank")
	v.SetDefault("seed.database.sslmode", "disable")

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", "atm.withdrawals.approved")
	v.SetDefault("events.client_name", "bank-host")
}

// bindEnv keeps the short variable names used by existing deployments
func bindEnv(v *viper.Viper) {
	bindings := map[string][]string{
		"server.port":            {"SERVER_PORT", "PORT"},
		"server.read_timeout":    {"SERVER_READ_TIMEOUT", "READ_TIMEOUT"},
		"server.write_timeout":   {"SERVER_WRITE_TIMEOUT", "WRITE_TIMEOUT"},
		"server.idle_timeout":    {"SERVER_IDLE_TIMEOUT", "IDLE_TIMEOUT"},
		"logger.level":           {"LOGGER_LEVEL", "LOG_LEVEL"},
		"logger.format":          {"LOGGER_FORMAT", "LOG_FORMAT"},
		"seed.database.host":     {"SEED_DATABASE_HOST", "DB_HOST"},
		"seed.database.port":     {"SEED_DATABASE_PORT", "DB_PORT"},
		"seed.database.user":     {"SEED_DATABASE_USER", "DB_USER"},
		"seed.database.password": {"SEED_DATABASE_PASSWORD", "DB_PASSWORD"},
		"seed.database.name":     {"SEED_DATABASE_NAME", "DB_NAME"},
		"seed.database.sslmode":  {"SEED_DATABASE_SSLMODE", "DB_SSLMODE"},
		"events.nats_url":        {"EVENTS_NATS_URL", "NATS_URL"},
	}

	for key, envs := range bindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}
