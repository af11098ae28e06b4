package service

import (
	"context"
	"time"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/ordering"
)

// The lifecycle steps shared by every ordered record type. Each runs inside
// the caller's transaction.

// place returns the order of a record about to be created in parentID:
// appended when requested is nil, otherwise at the clamped requested slot
// with the tail shifted down.
func place(ctx context.Context, m *ordering.Manager, parentID string, requested *int) (int, error) {
	if requested == nil {
		return m.NextOrder(ctx, parentID)
	}
	return m.InsertAt(ctx, parentID, *requested)
}

// relocate applies a parent and/or order change. It reports whether the
// record changed parent.
func relocate(ctx context.Context, m *ordering.Manager, id, fromParentID string, fromOrder int, toParentID *string, toOrder *int) (bool, int, error) {
	if toParentID != nil && *toParentID != fromParentID {
		order, err := m.MoveToParent(ctx, id, fromParentID, *toParentID, toOrder)
		return true, order, err
	}
	if toOrder != nil && *toOrder != fromOrder {
		order, err := m.MoveTo(ctx, fromParentID, id, *toOrder)
		return false, order, err
	}
	return false, fromOrder, nil
}

// step swaps a record with its neighbour, reporting a boundary error when
// there is none.
func step(ctx context.Context, m *ordering.Manager, parentID, id, noun string, dir ordering.Direction) error {
	moved, err := m.SwapAdjacent(ctx, parentID, id, dir)
	if err != nil {
		return err
	}
	if !moved {
		edge := "top"
		if dir == ordering.Down {
			edge = "bottom"
		}
		return apperr.Boundary("%s is already at the %s", noun, edge)
	}
	return nil
}

// now returns the timestamp written to CreatedAt and UpdatedAt.
func now() time.Time {
	return time.Now().UTC()
}

const copySuffix = " (Copy)"
