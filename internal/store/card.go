package store

import (
	"context"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/eleven-am/trellis/internal/logger"
	"github.com/eleven-am/trellis/internal/model"
)

var cardMeta = metadata{
	table: "cards",
	columns: []string{
		"id", "tenant_id", "version", "created_at", "updated_at", "deleted_at",
		"meta_data", "title", "description", "board_id", "column_id", "position",
		"priority", "labels", "assignees", "due_date", "estimated_hours",
		"actual_hours",
	},
}

var cardOrderable = []string{"id", "title", "position", "priority", "due_date", "created_at", "updated_at"}

// CardRepo stores cards, the ordered children of a column.
type CardRepo struct {
	base[model.Card]
}

func newCardRepo(s *Store) *CardRepo {
	return &CardRepo{base[model.Card]{store: s, meta: cardMeta}}
}

// Create validates and persists a new card, appended at the end of its
// column's card sequence. The card's board must be the board of its column;
// an empty BoardID is derived from the column.
func (r *CardRepo) Create(ctx context.Context, tenantID string, c *model.Card) (*model.Card, error) {
	const op = "card.create"

	if c.Priority == 0 {
		c.Priority = model.MinPriority
	}
	c.Labels = c.Labels.Normalize()
	c.Assignees = c.Assignees.Normalize()
	if c.ColumnID == "" {
		return nil, invalidf(op, r.meta.table, "column_id is required")
	}

	var out *model.Card
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		// The column's row lock serializes every writer to its card set,
		// including two creates racing into an empty column.
		column, err := tx.Columns.getLocked(ctx, op, tenantID, c.ColumnID)
		if err != nil {
			return err
		}
		if c.BoardID == "" {
			c.BoardID = column.BoardID
		}
		if err := c.Validate(); err != nil {
			return invalid(op, r.meta.table, err)
		}
		if c.BoardID != column.BoardID {
			return invalidf(op, r.meta.table, "column %s belongs to board %s, not %s", column.ID, column.BoardID, c.BoardID)
		}

		siblings, err := tx.lockSiblings(ctx, r.meta.table, "column_id", c.ColumnID, tenantID)
		if err != nil {
			return err
		}

		values := envelopeValues(model.NewID(), tenantID, tx.now())
		values["title"] = c.Title
		values["description"] = c.Description
		values["board_id"] = c.BoardID
		values["column_id"] = c.ColumnID
		values["position"] = appendPosition(siblings, tx.opts.PositionBase, tx.opts.PositionStep)
		values["priority"] = c.Priority
		values["labels"] = c.Labels
		values["assignees"] = c.Assignees
		values["due_date"] = c.DueDate
		values["estimated_hours"] = c.EstimatedHours
		values["actual_hours"] = c.ActualHours
		values["meta_data"] = c.MetaData

		out, err = tx.Cards.insert(ctx, op, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a live card scoped to the tenant.
func (r *CardRepo) Get(ctx context.Context, tenantID, id string) (*model.Card, error) {
	return r.get(ctx, "card.get", tenantID, id, false)
}

// GetIncludingDeleted returns a card even if soft-deleted.
func (r *CardRepo) GetIncludingDeleted(ctx context.Context, tenantID, id string) (*model.Card, error) {
	return r.get(ctx, "card.get", tenantID, id, true)
}

// Update applies a partial update gated by the optional expected version.
// ColumnID and Position never change here; that is what Move and Reorder
// are for.
func (r *CardRepo) Update(ctx context.Context, tenantID, id string, patch model.CardPatch, expectedVersion *int64) (*model.Card, error) {
	const op = "card.update"

	if err := patch.Validate(); err != nil {
		return nil, invalid(op, r.meta.table, err)
	}
	return r.update(ctx, op, tenantID, id, expectedVersion, patch.Fields())
}

// Reorder places the card at targetIndex among its column's live cards,
// under the sibling set's row locks.
func (r *CardRepo) Reorder(ctx context.Context, tenantID, id string, targetIndex int, expectedVersion *int64) (*model.Card, error) {
	const op = "card.reorder"

	if targetIndex < 0 {
		return nil, invalidf(op, r.meta.table, "target index must not be negative, got %d", targetIndex)
	}

	var out *model.Card
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		card, err := tx.Cards.get(ctx, op, tenantID, id, false)
		if err != nil {
			return err
		}

		var siblings []sibling
		for {
			columnID := card.ColumnID
			if _, err := tx.Columns.getLocked(ctx, op, tenantID, columnID); err != nil {
				return err
			}
			siblings, err = tx.lockSiblings(ctx, r.meta.table, "column_id", columnID, tenantID)
			if err != nil {
				return err
			}

			card, err = tx.Cards.get(ctx, op, tenantID, id, false)
			if err != nil {
				return err
			}
			if card.ColumnID == columnID {
				break
			}
			// A move committed while we waited for the locks; start over
			// against the card's current column.
		}
		if expectedVersion != nil && card.Version != *expectedVersion {
			return conflict(op, r.meta.table)
		}

		plan, err := planPlacement(siblings, id, targetIndex, tx.opts.PositionBase, tx.opts.PositionStep)
		if err != nil {
			logger.Position().Error("card reorder planning failed: %v", err)
			return invariantf(op, r.meta.table, "%v", err)
		}

		if err := tx.Cards.applyRenumber(ctx, op, tenantID, plan.Renumber); err != nil {
			return err
		}

		out, err = tx.Cards.update(ctx, op, tenantID, id, expectedVersion, map[string]interface{}{
			"position": plan.Position,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Move transfers the card to targetColumnID at targetIndex, or appends when
// targetIndex is nil. Removal from the old column's set and insertion into
// the new one commit together. Moving to a column on a different board is
// rejected and leaves the card untouched. The old set keeps its gap.
func (r *CardRepo) Move(ctx context.Context, tenantID, id, targetColumnID string, targetIndex *int, expectedVersion *int64) (*model.Card, error) {
	const op = "card.move"

	if targetIndex != nil && *targetIndex < 0 {
		return nil, invalidf(op, r.meta.table, "target index must not be negative, got %d", *targetIndex)
	}

	var out *model.Card
	err := r.store.WithTransaction(ctx, func(tx *Store) error {
		card, err := tx.Cards.get(ctx, op, tenantID, id, false)
		if err != nil {
			return err
		}

		target, err := tx.Columns.get(ctx, op, tenantID, targetColumnID, false)
		if err != nil {
			return err
		}
		if target.BoardID != card.BoardID {
			return invalidf(op, r.meta.table, "column %s belongs to board %s, not %s", target.ID, target.BoardID, card.BoardID)
		}

		// Lock both columns and their card sets, ordered by column id to
		// keep a global lock order across concurrent movers.
		var targetSiblings []sibling
		for {
			current := card.ColumnID
			columnIDs := []string{current}
			if targetColumnID != current {
				columnIDs = append(columnIDs, targetColumnID)
				sort.Strings(columnIDs)
			}
			for _, columnID := range columnIDs {
				if _, err := tx.Columns.getLocked(ctx, op, tenantID, columnID); err != nil {
					return err
				}
				siblings, err := tx.lockSiblings(ctx, r.meta.table, "column_id", columnID, tenantID)
				if err != nil {
					return err
				}
				if columnID == targetColumnID {
					targetSiblings = siblings
				}
			}

			card, err = tx.Cards.get(ctx, op, tenantID, id, false)
			if err != nil {
				return err
			}
			if card.ColumnID == current || card.ColumnID == targetColumnID {
				break
			}
			// A competing move relocated the card to a column we did not
			// lock; start over against its current column.
		}
		if expectedVersion != nil && card.Version != *expectedVersion {
			return conflict(op, r.meta.table)
		}

		index := len(targetSiblings)
		if targetIndex != nil {
			index = *targetIndex
		}

		plan, err := planPlacement(targetSiblings, id, index, tx.opts.PositionBase, tx.opts.PositionStep)
		if err != nil {
			logger.Position().Error("card move planning failed: %v", err)
			return invariantf(op, r.meta.table, "%v", err)
		}

		if err := tx.Cards.applyRenumber(ctx, op, tenantID, plan.Renumber); err != nil {
			return err
		}

		out, err = tx.Cards.update(ctx, op, tenantID, id, expectedVersion, map[string]interface{}{
			"column_id": targetColumnID,
			"position":  plan.Position,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft-deletes the card. Sibling positions keep their gaps.
func (r *CardRepo) Delete(ctx context.Context, tenantID, id string, expectedVersion *int64) error {
	const op = "card.delete"

	_, err := r.softDelete(ctx, op, tenantID, id, expectedVersion, r.store.now())
	return err
}

// List returns a page of cards filtered by parent, label and assignee
// membership, and priority range. Filters apply before pagination so the
// reported total matches the filtered set.
func (r *CardRepo) List(ctx context.Context, tenantID string, opts ListOptions) ([]model.Card, *Pagination, error) {
	const op = "card.list"

	var conds []squirrel.Sqlizer
	if opts.BoardID != "" {
		conds = append(conds, squirrel.Eq{"board_id": opts.BoardID})
	}
	if opts.ColumnID != "" {
		conds = append(conds, squirrel.Eq{"column_id": opts.ColumnID})
	}
	if len(opts.Labels) > 0 {
		conds = append(conds, squirrel.Expr("labels @> ?", pq.Array(opts.Labels)))
	}
	if len(opts.Assignees) > 0 {
		conds = append(conds, squirrel.Expr("assignees @> ?", pq.Array(opts.Assignees)))
	}
	if opts.MinPriority > 0 {
		conds = append(conds, squirrel.GtOrEq{"priority": opts.MinPriority})
	}
	if opts.MaxPriority > 0 {
		conds = append(conds, squirrel.LtOrEq{"priority": opts.MaxPriority})
	}

	return r.list(ctx, op, tenantID, opts, conds, cardOrderable)
}

// ListChildren returns one column's cards in iteration order.
func (r *CardRepo) ListChildren(ctx context.Context, tenantID, columnID string, includeDeleted bool) ([]model.Card, error) {
	return r.listChildren(ctx, "card.list_children", tenantID, "column_id", columnID, includeDeleted)
}
