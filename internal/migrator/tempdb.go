package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/eleven-am/trellis/internal/logger"
)

// TempDBManager creates short-lived scratch databases next to the target
// database. The migrator executes the desired DDL into one so Atlas can
// inspect and diff it against the live schema.
type TempDBManager struct {
	config *DBConfig
}

func NewTempDBManager(config *DBConfig) *TempDBManager {
	return &TempDBManager{config: config}
}

// buildTempDBURL swaps the database segment of the base URL for tempDBName,
// keeping credentials and query parameters.
func (t *TempDBManager) buildTempDBURL(tempDBName string) string {
	base := t.config.URL

	var query string
	if idx := strings.Index(base, "?"); idx != -1 {
		query = base[idx:]
		base = base[:idx]
	}

	if idx := strings.LastIndex(base, "/"); idx != -1 {
		base = base[:idx]
	}

	return base + "/" + tempDBName + query
}

// CreateTempDB creates a scratch database and returns an open connection to
// it plus a cleanup function that drops it again.
func (t *TempDBManager) CreateTempDB(ctx context.Context, tempDBName string) (*sql.DB, func(), error) {
	admin, err := t.config.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect for temp database creation: %w", err)
	}

	createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(tempDBName))
	if _, err := admin.ExecContext(ctx, createSQL); err != nil {
		admin.Close()
		return nil, nil, fmt.Errorf("failed to create temp database %s: %w", tempDBName, err)
	}

	tempDB, err := sql.Open("postgres", t.buildTempDBURL(tempDBName))
	if err != nil {
		admin.Close()
		return nil, nil, fmt.Errorf("failed to open temp database %s: %w", tempDBName, err)
	}

	cleanup := func() {
		tempDB.Close()
		dropSQL := fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoteIdentifier(tempDBName))
		if _, err := admin.Exec(dropSQL); err != nil {
			logger.Migration().Warn("failed to drop temp database %s: %v", tempDBName, err)
		}
		admin.Close()
	}

	return tempDB, cleanup, nil
}
