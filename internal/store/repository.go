package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// metadata describes the row-set backing one entity kind.
type metadata struct {
	table   string
	columns []string
}

func (m metadata) selectColumns() string {
	return strings.Join(m.columns, ", ")
}

// base implements the storage operations shared by every entity kind:
// insert with version stamping, tenant-scoped reads, partial updates gated
// by optimistic concurrency, and soft delete.
type base[T any] struct {
	store *Store
	meta  metadata
}

func (b *base[T]) exec() DBExecutor {
	return b.store.executor
}

// envelopeValues returns the common insert columns for a new entity row.
func envelopeValues(id, tenantID string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"tenant_id":  tenantID,
		"version":    1,
		"created_at": now,
		"updated_at": now,
	}
}

func (b *base[T]) insert(ctx context.Context, op string, values map[string]interface{}) (*T, error) {
	query, args, err := squirrel.Insert(b.meta.table).
		SetMap(values).
		Suffix("RETURNING " + b.meta.selectColumns()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var row T
	if err := b.exec().GetContext(ctx, &row, query, args...); err != nil {
		return nil, parseDBError(err, op, b.meta.table)
	}
	return &row, nil
}

func (b *base[T]) get(ctx context.Context, op, tenantID, id string, includeDeleted bool) (*T, error) {
	builder := squirrel.Select(b.meta.columns...).
		From(b.meta.table).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)
	if !includeDeleted {
		builder = builder.Where(squirrel.Eq{"deleted_at": nil})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var row T
	if err := b.exec().GetContext(ctx, &row, query, args...); err != nil {
		return nil, parseDBError(err, op, b.meta.table)
	}
	return &row, nil
}

// getLocked loads a live row and takes its row lock. Position-affecting
// operations lock the parent row before reading the sibling set: the sibling
// rows alone cannot serialize inserts (an empty set has nothing to lock, and
// a blocked locker never sees rows committed after it started waiting), so
// the parent row is the serialization point for the whole set.
func (b *base[T]) getLocked(ctx context.Context, op, tenantID, id string) (*T, error) {
	query, args, err := squirrel.Select(b.meta.columns...).
		From(b.meta.table).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "deleted_at": nil}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var row T
	if err := b.exec().GetContext(ctx, &row, query, args...); err != nil {
		return nil, parseDBError(err, op, b.meta.table)
	}
	return &row, nil
}

// update applies a partial update in a single conditional statement. The
// version check and the write are one atomic unit: the WHERE clause carries
// the expected version, so a stale caller matches zero rows and no
// interleaving writer can observe a half-applied state. Every successful
// update bumps the version by one and refreshes updated_at.
func (b *base[T]) update(ctx context.Context, op, tenantID, id string, expectedVersion *int64, fields map[string]interface{}) (*T, error) {
	builder := squirrel.Update(b.meta.table).
		SetMap(fields).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", b.store.now()).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "deleted_at": nil}).
		Suffix("RETURNING " + b.meta.selectColumns()).
		PlaceholderFormat(squirrel.Dollar)
	if expectedVersion != nil {
		builder = builder.Where(squirrel.Eq{"version": *expectedVersion})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var row T
	if err := b.exec().GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, b.classifyWriteMiss(ctx, op, tenantID, id, expectedVersion)
		}
		return nil, parseDBError(err, op, b.meta.table)
	}
	return &row, nil
}

// softDelete stamps deleted_at on a live row. Deleting an already-deleted
// row reports NotFound.
func (b *base[T]) softDelete(ctx context.Context, op, tenantID, id string, expectedVersion *int64, now time.Time) (*T, error) {
	return b.update(ctx, op, tenantID, id, expectedVersion, map[string]interface{}{
		"deleted_at": now,
	})
}

// classifyWriteMiss decides whether a conditional write that matched no rows
// was a version conflict or a missing row. The write itself was already
// atomic; this only names the failure.
func (b *base[T]) classifyWriteMiss(ctx context.Context, op, tenantID, id string, expectedVersion *int64) error {
	if expectedVersion == nil {
		return notFound(op, b.meta.table)
	}
	if _, err := b.get(ctx, op, tenantID, id, false); err == nil {
		return conflict(op, b.meta.table)
	}
	return notFound(op, b.meta.table)
}
