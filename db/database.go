package db

import (
	"fmt"
	"log"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options selects the database backend. A Turso URL takes precedence over the local file.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

// Initialize opens the local sqlite file in WAL mode, or a remote Turso database over libsql
func Initialize(opts Options) error {
	var err error

	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if opts.TursoURL != "" {
		dsn, derr := tursoDSN(opts.TursoURL, opts.TursoToken)
		if derr != nil {
			return derr
		}
		DB, err = gorm.Open(sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to turso database: %w", err)
		}
		log.Println("Database connection established (libsql/turso)")
		return nil
	}

	DB, err = gorm.Open(sqlite.Open(opts.Path+"?_journal_mode=WAL"), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established (WAL mode enabled)")
	return nil
}

// tursoDSN appends the auth token as the libsql driver expects it
func tursoDSN(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("authToken", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
