package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type DBConfig struct {
	URL             string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

func NewDBConfig(url string) *DBConfig {
	return &DBConfig{
		URL:             url,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
	}
}

func (cfg *DBConfig) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureDatabaseExists creates the database if it doesn't exist
func EnsureDatabaseExists(dsn string) error {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
		if _, err := db.Exec(createSQL); err != nil {
			return fmt.Errorf("failed to create database '%s': %w", dbName, err)
		}
	}

	return nil
}

// parseDSNForDB extracts database name and returns admin DSN
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parts := strings.Split(dsn, "/")
		if len(parts) < 4 {
			return "", "", fmt.Errorf("invalid database URL format")
		}

		dbPart := parts[len(parts)-1]
		if idx := strings.Index(dbPart, "?"); idx != -1 {
			dbName = dbPart[:idx]
			adminDSN = strings.Join(parts[:len(parts)-1], "/") + "/postgres?" + dbPart[idx+1:]
		} else {
			dbName = dbPart
			adminDSN = strings.Join(parts[:len(parts)-1], "/") + "/postgres"
		}
	} else {
		params := make(map[string]string)
		for _, kv := range strings.Fields(dsn) {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				params[parts[0]] = parts[1]
			}
		}

		dbName = params["dbname"]
		if dbName == "" {
			return "", "", fmt.Errorf("no database name found in DSN")
		}

		adminParts := make([]string, 0)
		for k, v := range params {
			if k == "dbname" {
				adminParts = append(adminParts, "dbname=postgres")
			} else {
				adminParts = append(adminParts, fmt.Sprintf("%s=%s", k, v))
			}
		}
		adminDSN = strings.Join(adminParts, " ")
	}

	return dbName, adminDSN, nil
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}

// GetDatabaseURL builds a database URL from components
func GetDatabaseURL(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, url.QueryEscape(password), host, port, dbname, sslmode)
}
