// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Mail     MailConfig
	Queue    QueueConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	ReadTimeout   time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout  time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout   time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"devsessionsecret"`
}

// DatabaseConfig holds database connection settings.
// Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"quotes"`
	Password   string `env:"DB_PASSWORD" envDefault:"quotes123"`
	DBName     string `env:"DB_NAME" envDefault:"quotes"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"quotes.db"`
	Debug      bool   `env:"DB_DEBUG" envDefault:"false"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `env:"DEV" envDefault:"true"`
	Migrations bool `env:"MIGRATIONS" envDefault:"false"`
	// SQLMigrations switches postgres schema management from AutoMigrate to
	// the embedded golang-migrate files.
	SQLMigrations bool `env:"SQL_MIGRATIONS" envDefault:"false"`
}

// AuthConfig holds authorization settings.
type AuthConfig struct {
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
}

// StorageConfig holds where rendered artifacts are written.
type StorageConfig struct {
	PDFDir     string `env:"PDF_DIR" envDefault:"storage/pdf"`
	ArchiveDir string `env:"ARCHIVE_DIR" envDefault:"storage/archives"`
}

// MailConfig holds SMTP settings. An empty Host selects the logging mailer.
type MailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
}

// Addr returns host:port for net/smtp.
func (m MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// QueueConfig sizes the background job queue.
type QueueConfig struct {
	Workers int `env:"QUEUE_WORKERS" envDefault:"2"`
	Size    int `env:"QUEUE_SIZE" envDefault:"64"`
}

// SeedConfig describes the optional bootstrap admin account.
type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	CompanyName   string `env:"SEED_COMPANY_NAME" envDefault:"Demo Company"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Queue.Workers < 1 {
		cfg.Queue.Workers = 1
	}
	return cfg, nil
}
