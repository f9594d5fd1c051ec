package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/internal/model"
)

var workspaceMeta = metadata{
	table: "workspaces",
	columns: []string{
		"id", "tenant_id", "version", "created_at", "updated_at", "deleted_at",
		"meta_data", "name", "description",
	},
}

var workspaceOrderable = []string{"id", "name", "created_at", "updated_at"}

// WorkspaceRepo stores workspaces, the roots of the hierarchy.
type WorkspaceRepo struct {
	base[model.Workspace]
}

func newWorkspaceRepo(s *Store) *WorkspaceRepo {
	return &WorkspaceRepo{base[model.Workspace]{store: s, meta: workspaceMeta}}
}

// Create validates and persists a new workspace at version 1.
func (r *WorkspaceRepo) Create(ctx context.Context, tenantID string, w *model.Workspace) (*model.Workspace, error) {
	const op = "workspace.create"

	if err := w.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}

	values := envelopeValues(model.NewID(), tenantID, r.store.now())
	values["name"] = w.Name
	values["description"] = w.Description
	values["meta_data"] = w.MetaData
	return r.insert(ctx, op, values)
}

// Get returns a live workspace scoped to the tenant.
func (r *WorkspaceRepo) Get(ctx context.Context, tenantID, id string) (*model.Workspace, error) {
	return r.get(ctx, "workspace.get", tenantID, id, false)
}

// GetIncludingDeleted returns a workspace even if soft-deleted.
func (r *WorkspaceRepo) GetIncludingDeleted(ctx context.Context, tenantID, id string) (*model.Workspace, error) {
	return r.get(ctx, "workspace.get", tenantID, id, true)
}

// Update applies a partial update gated by the optional expected version.
func (r *WorkspaceRepo) Update(ctx context.Context, tenantID, id string, patch model.WorkspacePatch, expectedVersion *int64) (*model.Workspace, error) {
	const op = "workspace.update"

	if err := patch.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}
	return r.update(ctx, op, tenantID, id, expectedVersion, patch.Fields())
}

// Delete soft-deletes the workspace and cascades to its boards, columns and
// cards in one transaction. Every affected row shares the same deletion
// timestamp and gets a version bump.
func (r *WorkspaceRepo) Delete(ctx context.Context, tenantID, id string, expectedVersion *int64) error {
	const op = "workspace.delete"

	return r.store.WithTransaction(ctx, func(tx *Store) error {
		now := tx.now()
		if _, err := tx.Workspaces.softDelete(ctx, op, tenantID, id, expectedVersion, now); err != nil {
			return err
		}

		boards, err := tx.cascadeSoftDelete(ctx, op, "boards",
			squirrel.Eq{"workspace_id": id}, tenantID, now)
		if err != nil {
			return err
		}

		childOfBoards := squirrel.Expr(
			"board_id IN (SELECT id FROM boards WHERE workspace_id = ? AND tenant_id = ?)",
			id, tenantID,
		)
		columns, err := tx.cascadeSoftDelete(ctx, op, "columns", childOfBoards, tenantID, now)
		if err != nil {
			return err
		}
		cards, err := tx.cascadeSoftDelete(ctx, op, "cards", childOfBoards, tenantID, now)
		if err != nil {
			return err
		}

		logger.Store().Debug("deleted workspace %s: %d boards, %d columns, %d cards", id, boards, columns, cards)
		return nil
	})
}

// List returns a page of workspaces for the tenant.
func (r *WorkspaceRepo) List(ctx context.Context, tenantID string, opts ListOptions) ([]model.Workspace, *Pagination, error) {
	return r.list(ctx, "workspace.list", tenantID, opts, nil, workspaceOrderable)
}

// cascadeSoftDelete stamps deleted_at on every live row matching cond,
// bumping each row's version. Returns the number of rows affected.
func (s *Store) cascadeSoftDelete(ctx context.Context, op, table string, cond squirrel.Sqlizer, tenantID string, now time.Time) (int64, error) {
	query, args, err := squirrel.Update(table).
		Set("deleted_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", now).
		Where(squirrel.And{cond, squirrel.Eq{"tenant_id": tenantID, "deleted_at": nil}}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, &Error{Op: op, Table: table, Err: err}
	}

	res, err := s.executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, parseDBError(err, op, table)
	}
	return res.RowsAffected()
}
