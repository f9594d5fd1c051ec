package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/eleven-am/trellis/internal/logger"
)

// sibling is the slice of a row the position manager works on.
type sibling struct {
	ID       string `db:"id"`
	Position int64  `db:"position"`
}

// lockSiblings loads the live members of one sibling set in iteration order
// and takes row locks on them. Callers must hold the parent's row lock
// already; that lock serializes writers to the set, these locks cover the
// rows a renumber may rewrite.
func (s *Store) lockSiblings(ctx context.Context, table, parentColumn, parentID, tenantID string) ([]sibling, error) {
	query := fmt.Sprintf(
		`SELECT id, position FROM %s WHERE %s = $1 AND tenant_id = $2 AND deleted_at IS NULL ORDER BY position, id FOR UPDATE`,
		table, parentColumn,
	)

	var rows []sibling
	if err := s.executor.SelectContext(ctx, &rows, query, parentID, tenantID); err != nil {
		return nil, parseDBError(err, "lock_siblings", table)
	}
	return rows, nil
}

// placement is the outcome of planning where an entity lands in a sibling
// set. When the target gap was too narrow for a midpoint, Renumber carries
// new uniformly spaced positions for the surviving siblings.
type placement struct {
	Position int64
	Index    int
	Renumber []sibling
	NoOp     bool
}

// appendPosition returns the position key for appending to a sibling set:
// the base key for an empty set, otherwise max + step.
func appendPosition(siblings []sibling, base, step int64) int64 {
	if len(siblings) == 0 {
		return base
	}
	max := siblings[0].Position
	for _, s := range siblings[1:] {
		if s.Position > max {
			max = s.Position
		}
	}
	return max + step
}

// planPlacement computes the position key that puts moveID at targetIndex
// within the final arrangement of the given sibling set. siblings must be in
// iteration order; moveID may or may not currently belong to the set. The
// returned key is strictly between the would-be neighbors. If the neighbors'
// keys are adjacent integers, the surviving siblings are respaced uniformly
// (the rare fallback path) and the key is taken from the fresh spacing.
func planPlacement(siblings []sibling, moveID string, targetIndex int, base, step int64) (placement, error) {
	if targetIndex < 0 {
		return placement{}, fmt.Errorf("target index must not be negative, got %d", targetIndex)
	}

	others := make([]sibling, 0, len(siblings))
	currentIndex := -1
	for i, s := range siblings {
		if s.ID == moveID {
			currentIndex = i
			continue
		}
		others = append(others, s)
	}

	idx := targetIndex
	if idx > len(others) {
		// Past the end clamps to append
		idx = len(others)
	}

	if currentIndex >= 0 && idx == currentIndex {
		return placement{Position: siblings[currentIndex].Position, Index: idx, NoOp: true}, nil
	}

	var prev, next *sibling
	if idx > 0 {
		prev = &others[idx-1]
	}
	if idx < len(others) {
		next = &others[idx]
	}

	var pos int64
	switch {
	case prev == nil && next == nil:
		pos = base
	case prev == nil:
		pos = next.Position - step
	case next == nil:
		pos = prev.Position + step
	default:
		gap := next.Position - prev.Position
		if gap < 1 {
			return placement{}, fmt.Errorf("positions out of order: %d before %d", prev.Position, next.Position)
		}
		if gap >= 2 {
			pos = prev.Position + gap/2
			break
		}

		// Neighbors are adjacent integers: respace the whole set before
		// taking the midpoint slot. Rows whose key happens to keep its
		// value are left untouched.
		renumbered := make([]sibling, 0, len(others))
		for i, s := range others {
			slot := i
			if i >= idx {
				slot = i + 1
			}
			if newPos := base + int64(slot)*step; newPos != s.Position {
				renumbered = append(renumbered, sibling{ID: s.ID, Position: newPos})
			}
		}
		return placement{
			Position: base + int64(idx)*step,
			Index:    idx,
			Renumber: renumbered,
		}, nil
	}

	if err := verifyPlacement(others, idx, pos); err != nil {
		return placement{}, err
	}

	return placement{Position: pos, Index: idx}, nil
}

// applyRenumber rewrites respaced sibling positions. A touched row's stored
// state changes, so its version is bumped like any other mutation.
func (b *base[T]) applyRenumber(ctx context.Context, op, tenantID string, renumber []sibling) error {
	for _, r := range renumber {
		query, args, err := squirrel.Update(b.meta.table).
			Set("position", r.Position).
			Set("version", squirrel.Expr("version + 1")).
			Set("updated_at", b.store.now()).
			Where(squirrel.Eq{"id": r.ID, "tenant_id": tenantID, "deleted_at": nil}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return &Error{Op: op, Table: b.meta.table, Err: err}
		}
		if _, err := b.exec().ExecContext(ctx, query, args...); err != nil {
			return parseDBError(err, op, b.meta.table)
		}
	}
	if len(renumber) > 0 {
		logger.Position().Debug("respaced %d siblings in %s", len(renumber), b.meta.table)
	}
	return nil
}

// verifyPlacement asserts the planned key keeps the final arrangement
// strictly increasing. A failure here means the stored positions were
// already broken; it is reported, never silently repaired.
func verifyPlacement(others []sibling, idx int, pos int64) error {
	last := int64(0)
	first := true
	check := func(p int64) error {
		if !first && p <= last {
			return fmt.Errorf("position %d does not advance past %d", p, last)
		}
		first = false
		last = p
		return nil
	}

	for i, s := range others {
		if i == idx {
			if err := check(pos); err != nil {
				return err
			}
		}
		if err := check(s.Position); err != nil {
			return err
		}
	}
	if idx == len(others) {
		return check(pos)
	}
	return nil
}
