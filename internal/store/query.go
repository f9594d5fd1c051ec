package store

import (
	"context"

	"github.com/Masterminds/squirrel"
)

// ListOptions controls filtering, ordering and pagination for listings.
// Filter fields a kind does not have are ignored by that kind's repository.
type ListOptions struct {
	Limit          int
	Offset         int
	OrderBy        string
	OrderDesc      bool
	IncludeDeleted bool

	WorkspaceID string
	BoardID     string
	ColumnID    string
	Labels      []string
	Assignees   []string
	MinPriority int
	MaxPriority int
}

// Pagination describes the full result set a page was cut from. Filters are
// applied before counting, so Total is accurate for the filtered set.
type Pagination struct {
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func paginate(total int64, limit, offset int) *Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Total:   total,
		Pages:   pages,
		Limit:   limit,
		Offset:  offset,
		HasNext: int64(offset+limit) < total,
		HasPrev: offset > 0,
	}
}

// clampLimit applies the default and the 1..MaxLimit range.
func (s *Store) clampLimit(limit int) int {
	if limit <= 0 {
		return s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		return s.opts.MaxLimit
	}
	return limit
}

func orderExpr(column string, desc bool) string {
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// list runs a filtered, ordered, paginated select plus the matching count.
// conds carry the kind-specific filter predicates; orderable whitelists the
// sort columns the kind exposes.
func (b *base[T]) list(ctx context.Context, op, tenantID string, opts ListOptions, conds []squirrel.Sqlizer, orderable []string) ([]T, *Pagination, error) {
	if opts.Offset < 0 {
		return nil, nil, invalidf(op, b.meta.table, "offset must not be negative, got %d", opts.Offset)
	}
	limit := b.store.clampLimit(opts.Limit)

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	allowed := false
	for _, col := range orderable {
		if col == orderBy {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, nil, invalidf(op, b.meta.table, "cannot order by %q", orderBy)
	}

	where := squirrel.And{squirrel.Eq{"tenant_id": tenantID}}
	if !opts.IncludeDeleted {
		where = append(where, squirrel.Eq{"deleted_at": nil})
	}
	where = append(where, conds...)

	countQuery, countArgs, err := squirrel.Select("COUNT(*)").
		From(b.meta.table).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var total int64
	if err := b.exec().GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, nil, parseDBError(err, op, b.meta.table)
	}

	builder := squirrel.Select(b.meta.columns...).
		From(b.meta.table).
		Where(where).
		OrderBy(orderExpr(orderBy, opts.OrderDesc)).
		Limit(uint64(limit)).
		Offset(uint64(opts.Offset)).
		PlaceholderFormat(squirrel.Dollar)
	if orderBy != "id" {
		// Stable tie-break
		builder = builder.OrderBy("id ASC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	rows := make([]T, 0, limit)
	if err := b.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, parseDBError(err, op, b.meta.table)
	}

	return rows, paginate(total, limit, opts.Offset), nil
}

// listChildren returns one sibling set in iteration order: ascending
// position with id as the stable tie-break.
func (b *base[T]) listChildren(ctx context.Context, op, tenantID, parentColumn, parentID string, includeDeleted bool) ([]T, error) {
	where := squirrel.And{squirrel.Eq{parentColumn: parentID, "tenant_id": tenantID}}
	if !includeDeleted {
		where = append(where, squirrel.Eq{"deleted_at": nil})
	}

	query, args, err := squirrel.Select(b.meta.columns...).
		From(b.meta.table).
		Where(where).
		OrderBy("position ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, &Error{Op: op, Table: b.meta.table, Err: err}
	}

	var rows []T
	if err := b.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, parseDBError(err, op, b.meta.table)
	}
	return rows, nil
}
