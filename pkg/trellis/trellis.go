// Package trellis is the public entry point for the trellis entity store:
// tenant-scoped workspaces, boards, columns and cards with fractional
// ordering and optimistic concurrency.
package trellis

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/eleven-am/trellis/internal/model"
	"github.com/eleven-am/trellis/internal/store"
)

// Re-exported store types.
type (
	Store       = store.Store
	Options     = store.Options
	ListOptions = store.ListOptions
	Pagination  = store.Pagination
)

// Re-exported entity types.
type (
	Workspace = model.Workspace
	Board     = model.Board
	Column    = model.Column
	Card      = model.Card

	WorkspacePatch = model.WorkspacePatch
	BoardPatch     = model.BoardPatch
	ColumnPatch    = model.ColumnPatch
	CardPatch      = model.CardPatch
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrNotFound   = store.ErrNotFound
	ErrConflict   = store.ErrConflict
	ErrValidation = store.ErrValidation
	ErrInvariant  = store.ErrInvariant
)

// Open connects to the database and returns a Store bound to the connection.
// The returned close function releases the connection pool.
func Open(ctx context.Context, databaseURL string, opts Options) (*Store, func() error, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store.New(db, opts), db.Close, nil
}

// NewStore builds a Store on an already-open database handle.
func NewStore(db *sqlx.DB, opts Options) *Store {
	return store.New(db, opts)
}
