package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the migration commands and the API server.
type Config struct {
	Environment Environment `mapstructure:"-"`
	LogLevel    string      `mapstructure:"log_level"`

	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Legacy   LegacyConfig   `mapstructure:"legacy"`
	Owner    OwnerConfig    `mapstructure:"owner"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        string   `mapstructure:"port" validate:"required,numeric"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// RateLimit is mutating requests per minute per client; 0 disables it.
	RateLimit int `mapstructure:"rate_limit" validate:"min=0"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// DatabaseConfig is the target database. URL wins over the discrete fields
// and may be a sqlite: URL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host" validate:"required_without=URL"`
	Port     string `mapstructure:"port" validate:"required_without=URL"`
	User     string `mapstructure:"user" validate:"required_without=URL"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required_without=URL"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the URL when set, otherwise a libpq keyword string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// LegacyConfig is the MySQL server holding the legacy catalog.
type LegacyConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Name     string        `mapstructure:"name"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Validate checks the fields needed to connect. The catalog name is only
// required when requireName is set.
func (l LegacyConfig) Validate(requireName bool) error {
	var errs []error
	if l.Host == "" {
		errs = append(errs, ValidationError{Field: "LEGACY_DB_HOST", Message: "is required"})
	}
	if l.Port <= 0 || l.Port > 65535 {
		errs = append(errs, ValidationError{Field: "LEGACY_DB_PORT", Message: fmt.Sprintf("invalid port %d", l.Port)})
	}
	if l.User == "" {
		errs = append(errs, ValidationError{Field: "LEGACY_DB_USER", Message: "is required"})
	}
	if requireName && l.Name == "" {
		errs = append(errs, ValidationError{Field: "LEGACY_DB_NAME", Message: "is required"})
	}
	return errors.Join(errs...)
}

// OwnerConfig is the user migrated recipes and cookbooks are assigned to.
type OwnerConfig struct {
	ID    string `mapstructure:"id" validate:"required,max=36"`
	Name  string `mapstructure:"name" validate:"required"`
	Email string `mapstructure:"email" validate:"required,email"`
}

// SnapshotConfig locates the snapshot file: a path or s3://bucket/key.
type SnapshotConfig struct {
	Location string `mapstructure:"location" validate:"required"`
	// Format is json or yaml; empty means decide from the extension.
	Format string `mapstructure:"format" validate:"omitempty,oneof=json yaml"`
}

// RedisConfig configures the rate limiter store.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"log_level":           {"LOG_LEVEL"},
	"server.host":         {"SERVER_HOST"},
	"server.port":         {"SERVER_PORT", "PORT"},
	"server.cors_origins": {"CORS_ORIGINS"},
	"server.rate_limit":   {"RATE_LIMIT_PER_MINUTE"},
	"database.url":        {"DATABASE_URL"},
	"database.host":       {"DB_HOST"},
	"database.port":       {"DB_PORT"},
	"database.user":       {"DB_USER"},
	"database.password":   {"DB_PASSWORD"},
	"database.name":       {"DB_NAME"},
	"database.sslmode":    {"DB_SSL_MODE"},
	"legacy.host":         {"LEGACY_DB_HOST"},
	"legacy.port":         {"LEGACY_DB_PORT"},
	"legacy.user":         {"LEGACY_DB_USER"},
	"legacy.password":     {"LEGACY_DB_PASSWORD"},
	"legacy.name":         {"LEGACY_DB_NAME"},
	"legacy.timeout":      {"LEGACY_DB_TIMEOUT"},
	"owner.id":            {"LEGACY_OWNER_ID"},
	"owner.name":          {"LEGACY_OWNER_NAME"},
	"owner.email":         {"LEGACY_OWNER_EMAIL"},
	"snapshot.location":   {"SNAPSHOT_LOCATION"},
	"snapshot.format":     {"SNAPSHOT_FORMAT"},
	"redis.url":           {"REDIS_URL"},
	"redis.host":          {"REDIS_HOST"},
	"redis.port":          {"REDIS_PORT"},
	"redis.password":      {"REDIS_PASSWORD"},
	"redis.db":            {"REDIS_DB"},
	"s3.bucket":           {"S3_BUCKET_NAME"},
	"s3.region":           {"AWS_REGION"},
	"s3.endpoint":         {"S3_ENDPOINT"},
	"s3.presign_ttl":      {"S3_PRESIGN_TTL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "recipebox")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("legacy.host", "localhost")
	v.SetDefault("legacy.port", 3306)
	v.SetDefault("legacy.user", "root")
	v.SetDefault("legacy.name", "recipe_laravel")
	v.SetDefault("legacy.timeout", 10*time.Second)
	v.SetDefault("owner.id", "legacy-import")
	v.SetDefault("owner.name", "Legacy Import")
	v.SetDefault("owner.email", "legacy-import@recipebox.local")
	v.SetDefault("snapshot.location", "legacy-snapshot.json")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("s3.presign_ttl", 15*time.Minute)
}

// LoadConfig reads defaults, then the optional config file, then the
// environment, then Docker secrets for passwords left empty. file may be
// empty to look for recipebox.yaml in the working directory.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("recipebox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{Environment: GetEnvironment()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applySecrets fills passwords from the secrets directory when the
// environment left them empty.
func applySecrets(cfg *Config) {
	if cfg.Database.Password == "" {
		cfg.Database.Password = readSecret("db_password")
	}
	if cfg.Legacy.Password == "" {
		cfg.Legacy.Password = readSecret("legacy_db_password")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = readSecret("redis_password")
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = readSecret("database_url")
	}
}

// splitList accepts both a YAML list and a single comma separated value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
