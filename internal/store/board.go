package store

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/internal/model"
)

var boardMeta = metadata{
	table: "boards",
	columns: []string{
		"id", "tenant_id", "version", "created_at", "updated_at", "deleted_at",
		"meta_data", "name", "description", "workspace_id", "template",
	},
}

var boardOrderable = []string{"id", "name", "created_at", "updated_at"}

// BoardRepo stores boards. A board with a workflow template gets its default
// columns seeded at creation.
type BoardRepo struct {
	base[model.Board]
}

func newBoardRepo(s *Store) *BoardRepo {
	return &BoardRepo{base[model.Board]{store: s, meta: boardMeta}}
}

// Create validates and persists a new board. The owning workspace must be
// live. When b.Template names a workflow template, its columns are created
// in the same transaction.
func (r *BoardRepo) Create(ctx context.Context, tenantID string, b *model.Board) (*model.Board, error) {
	const op = "board.create"

	if err := b.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}

	var seed []model.TemplateColumn
	if b.Template != "" {
		columns, err := model.Template(b.Template)
		if err != nil {
			return nil, invalid(op, r.meta.table, err)
		}
		seed = columns
	}

	var out *model.Board
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		if _, err := tx.Workspaces.get(ctx, op, tenantID, b.WorkspaceID, false); err != nil {
			return err
		}

		values := envelopeValues(model.NewID(), tenantID, tx.now())
		values["name"] = b.Name
		values["description"] = b.Description
		values["workspace_id"] = b.WorkspaceID
		values["template"] = b.Template
		values["meta_data"] = b.MetaData

		board, err := tx.Boards.insert(ctx, op, values)
		if err != nil {
			return err
		}

		for i, tc := range seed {
			values := envelopeValues(model.NewID(), tenantID, tx.now())
			values["title"] = tc.Title
			values["description"] = tc.Description
			values["color"] = tc.Color
			values["board_id"] = board.ID
			values["position"] = tx.opts.PositionBase + int64(i)*tx.opts.PositionStep
			values["is_archived"] = false
			if _, err := tx.Columns.insert(ctx, op, values); err != nil {
				return err
			}
		}
		if len(seed) > 0 {
			logger.Store().Debug("seeded board %s with %d columns from template %q", board.ID, len(seed), b.Template)
		}

		out = board
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a live board scoped to the tenant.
func (r *BoardRepo) Get(ctx context.Context, tenantID, id string) (*model.Board, error) {
	return r.get(ctx, "board.get", tenantID, id, false)
}

// GetIncludingDeleted returns a board even if soft-deleted.
func (r *BoardRepo) GetIncludingDeleted(ctx context.Context, tenantID, id string) (*model.Board, error) {
	return r.get(ctx, "board.get", tenantID, id, true)
}

// Update applies a partial update gated by the optional expected version.
func (r *BoardRepo) Update(ctx context.Context, tenantID, id string, patch model.BoardPatch, expectedVersion *int64) (*model.Board, error) {
	const op = "board.update"

	if err := patch.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}
	return r.update(ctx, op, tenantID, id, expectedVersion, patch.Fields())
}

// Delete soft-deletes the board and cascades to its columns and cards.
func (r *BoardRepo) Delete(ctx context.Context, tenantID, id string, expectedVersion *int64) error {
	const op = "board.delete"

	return r.store.WithTransaction(ctx, func(tx *Store) error {
		now := tx.now()
		if _, err := tx.Boards.softDelete(ctx, op, tenantID, id, expectedVersion, now); err != nil {
			return err
		}

		columns, err := tx.cascadeSoftDelete(ctx, op, "columns",
			squirrel.Eq{"board_id": id}, tenantID, now)
		if err != nil {
			return err
		}
		cards, err := tx.cascadeSoftDelete(ctx, op, "cards",
			squirrel.Eq{"board_id": id}, tenantID, now)
		if err != nil {
			return err
		}

		logger.Store().Debug("deleted board %s: %d columns, %d cards", id, columns, cards)
		return nil
	})
}

// List returns a page of boards, optionally filtered by workspace.
func (r *BoardRepo) List(ctx context.Context, tenantID string, opts ListOptions) ([]model.Board, *Pagination, error) {
	var conds []squirrel.Sqlizer
	if opts.WorkspaceID != "" {
		conds = append(conds, squirrel.Eq{"workspace_id": opts.WorkspaceID})
	}
	return r.list(ctx, "board.list", tenantID, opts, conds, boardOrderable)
}

// ListChildren returns the boards of one workspace ordered by id. Boards
// have no position key; creation order is the natural order.
func (r *BoardRepo) ListChildren(ctx context.Context, tenantID, workspaceID string, includeDeleted bool) ([]model.Board, error) {
	const op = "board.list_children"

	where := squirrel.And{squirrel.Eq{"workspace_id": workspaceID, "tenant_id": tenantID}}
	if !includeDeleted {
		where = append(where, squirrel.Eq{"deleted_at": nil})
	}

	query, args, err := squirrel.Select(r.meta.columns...).
		From(r.meta.table).
		Where(where).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: r.meta.table, Err: err}
	}

	var rows []model.Board
	if err := r.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, parseDBError(err, op, r.meta.table)
	}
	return rows, nil
}
