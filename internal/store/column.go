package store

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/internal/model"
)

var columnMeta = metadata{
	table: "columns",
	columns: []string{
		"id", "tenant_id", "version", "created_at", "updated_at", "deleted_at",
		"meta_data", "title", "description", "board_id", "position", "color",
		"is_archived",
	},
}

var columnOrderable = []string{"id", "title", "position", "created_at", "updated_at"}

// ColumnRepo stores columns, the ordered children of a board.
type ColumnRepo struct {
	base[model.Column]
}

func newColumnRepo(s *Store) *ColumnRepo {
	return &ColumnRepo{base[model.Column]{store: s, meta: columnMeta}}
}

// Create validates and persists a new column, appended at the end of its
// board's column sequence. The sibling set is locked while the append
// position is computed so concurrent inserts cannot collide.
func (r *ColumnRepo) Create(ctx context.Context, tenantID string, c *model.Column) (*model.Column, error) {
	const op = "column.create"

	if err := c.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}

	var out *model.Column
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		// The board's row lock serializes every writer to its column set,
		// including two creates racing into an empty board.
		if _, err := tx.Boards.getLocked(ctx, op, tenantID, c.BoardID); err != nil {
			return err
		}

		siblings, err := tx.lockSiblings(ctx, r.meta.table, "board_id", c.BoardID, tenantID)
		if err != nil {
			return err
		}

		values := envelopeValues(model.NewID(), tenantID, tx.now())
		values["title"] = c.Title
		values["description"] = c.Description
		values["board_id"] = c.BoardID
		values["position"] = appendPosition(siblings, tx.opts.PositionBase, tx.opts.PositionStep)
		values["color"] = c.Color
		values["is_archived"] = c.IsArchived
		values["meta_data"] = c.MetaData

		out, err = tx.Columns.insert(ctx, op, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a live column scoped to the tenant.
func (r *ColumnRepo) Get(ctx context.Context, tenantID, id string) (*model.Column, error) {
	return r.get(ctx, "column.get", tenantID, id, false)
}

// GetIncludingDeleted returns a column even if soft-deleted.
func (r *ColumnRepo) GetIncludingDeleted(ctx context.Context, tenantID, id string) (*model.Column, error) {
	return r.get(ctx, "column.get", tenantID, id, true)
}

// Update applies a partial update gated by the optional expected version.
// Position is not patchable; use Reorder.
func (r *ColumnRepo) Update(ctx context.Context, tenantID, id string, patch model.ColumnPatch, expectedVersion *int64) (*model.Column, error) {
	const op = "column.update"

	if err := patch.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}
	return r.update(ctx, op, tenantID, id, expectedVersion, patch.Fields())
}

// Reorder places the column at targetIndex among its board's live columns.
// The version check, position planning and write happen under the sibling
// set's row locks, as one atomic unit. Reordering onto the current index is
// accepted and still bumps the version.
func (r *ColumnRepo) Reorder(ctx context.Context, tenantID, id string, targetIndex int, expectedVersion *int64) (*model.Column, error) {
	const op = "column.reorder"

	if targetIndex < 0 {
		return nil, invalidf(op, r.meta.table, "target index must not be negative, got %d", targetIndex)
	}

	var out *model.Column
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		col, err := tx.Columns.get(ctx, op, tenantID, id, false)
		if err != nil {
			return err
		}

		// A column never changes boards, so one board lock is enough.
		if _, err := tx.Boards.getLocked(ctx, op, tenantID, col.BoardID); err != nil {
			return err
		}
		siblings, err := tx.lockSiblings(ctx, r.meta.table, "board_id", col.BoardID, tenantID)
		if err != nil {
			return err
		}

		// The row is locked as part of its set; re-read for the
		// authoritative version.
		col, err = tx.Columns.get(ctx, op, tenantID, id, false)
		if err != nil {
			return err
		}
		if expectedVersion != nil && col.Version != *expectedVersion {
			return conflict(op, r.meta.table)
		}

		plan, err := planPlacement(siblings, id, targetIndex, tx.opts.PositionBase, tx.opts.PositionStep)
		if err != nil {
			logger.Position().Error("column reorder planning failed: %v", err)
			return invariantf(op, r.meta.table, "%v", err)
		}

		if err := tx.Columns.applyRenumber(ctx, op, tenantID, plan.Renumber); err != nil {
			return err
		}

		out, err = tx.Columns.update(ctx, op, tenantID, id, expectedVersion, map[string]interface{}{
			"position": plan.Position,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft-deletes the column and cascades to its cards. Surviving
// sibling positions are left alone; gaps are fine.
func (r *ColumnRepo) Delete(ctx context.Context, tenantID, id string, expectedVersion *int64) error {
	const op = "column.delete"

	return r.store.WithTransaction(ctx, func(tx *Store) error {
		now := tx.now()
		if _, err := tx.Columns.softDelete(ctx, op, tenantID, id, expectedVersion, now); err != nil {
			return err
		}

		cards, err := tx.cascadeSoftDelete(ctx, op, "cards",
			squirrel.Eq{"column_id": id}, tenantID, now)
		if err != nil {
			return err
		}

		logger.Store().Debug("deleted column %s: %d cards", id, cards)
		return nil
	})
}

// List returns a page of columns, optionally filtered by board.
func (r *ColumnRepo) List(ctx context.Context, tenantID string, opts ListOptions) ([]model.Column, *Pagination, error) {
	var conds []squirrel.Sqlizer
	if opts.BoardID != "" {
		conds = append(conds, squirrel.Eq{"board_id": opts.BoardID})
	}
	return r.list(ctx, "column.list", tenantID, opts, conds, columnOrderable)
}

// FindOrphans returns live columns whose board is missing or soft-deleted.
// Orphans are left behind when rows are purged out of band; the cleanup
// command soft-deletes them.
func (r *ColumnRepo) FindOrphans(ctx context.Context, tenantID string) ([]model.Column, error) {
	const op = "column.find_orphans"

	query, args, err := squirrel.Select(r.meta.columns...).
		From(r.meta.table).
		Where(squirrel.And{
			squirrel.Eq{"tenant_id": tenantID, "deleted_at": nil},
			squirrel.Expr("NOT EXISTS (SELECT 1 FROM boards b WHERE b.id = columns.board_id AND b.deleted_at IS NULL)"),
		}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: r.meta.table, Err: err}
	}

	var rows []model.Column
	if err := r.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, parseDBError(err, op, r.meta.table)
	}
	return rows, nil
}

// ListChildren returns one board's columns in iteration order.
func (r *ColumnRepo) ListChildren(ctx context.Context, tenantID, boardID string, includeDeleted bool) ([]model.Column, error) {
	return r.listChildren(ctx, "column.list_children", tenantID, "board_id", boardID, includeDeleted)
}
