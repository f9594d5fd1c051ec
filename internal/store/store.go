package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Options tunes store behavior. The zero value is usable; New fills in
// defaults.
type Options struct {
	// PositionStep is the spacing between appended position keys. A wide
	// step leaves room for midpoint inserts without renumbering.
	PositionStep int64
	// PositionBase is the position key of the first sibling.
	PositionBase int64
	// DefaultLimit applies when a listing omits the limit.
	DefaultLimit int
	// MaxLimit caps the listing page size.
	MaxLimit int
	// Now supplies timestamps; overridable for tests.
	Now func() time.Time
}

func defaultOptions() Options {
	return Options{
		PositionStep: 1000,
		PositionBase: 1000,
		DefaultLimit: 100,
		MaxLimit:     1000,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (o Options) withDefaults() Options {
	def := defaultOptions()
	if o.PositionStep <= 0 {
		o.PositionStep = def.PositionStep
	}
	if o.PositionBase <= 0 {
		o.PositionBase = def.PositionBase
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = def.DefaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = def.MaxLimit
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	return o
}

// Store is the entry point for all entity operations. It holds one repository
// per entity kind and manages database connections and transactions.
type Store struct {
	db       DBExecutor
	executor DBExecutor // Current executor (DB or TX)
	opts     Options

	Workspaces *WorkspaceRepo
	Boards     *BoardRepo
	Columns    *ColumnRepo
	Cards      *CardRepo
}

// New creates a Store on top of an open database handle.
func New(db *sqlx.DB, opts Options) *Store {
	s := &Store{
		db:       db,
		executor: db,
		opts:     opts.withDefaults(),
	}
	s.initRepositories()
	return s
}

func newStoreWithExecutor(db DBExecutor, executor DBExecutor, opts Options) *Store {
	s := &Store{
		db:       db,
		executor: executor,
		opts:     opts,
	}
	s.initRepositories()
	return s
}

func (s *Store) initRepositories() {
	s.Workspaces = newWorkspaceRepo(s)
	s.Boards = newBoardRepo(s)
	s.Columns = newColumnRepo(s)
	s.Cards = newCardRepo(s)
}

func (s *Store) now() time.Time {
	return s.opts.Now()
}

// WithTransaction executes a function within a database transaction.
// It returns a transaction-aware Store instance to the callback. Nested
// calls reuse the already-open transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	if _, isTransaction := s.executor.(*sqlx.Tx); isTransaction {
		return fn(s)
	}

	db, ok := s.db.(*sqlx.DB)
	if !ok {
		return fmt.Errorf("cannot start transaction: executor is not a database connection")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	txStore := newStoreWithExecutor(db, tx, s.opts)
	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}
