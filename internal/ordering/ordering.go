// Package ordering keeps the order values of items inside a parent scope
// dense and unique: for every scope the orders are exactly 1..N.
//
// A Manager never opens transactions. Callers hand it a Repository bound to
// a transaction (db.UnitOfWork for SQLite, a session for MongoDB) so that each
// operation commits as a whole and concurrent reorders of one scope serialize.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/erazemk/sangam/internal/apperr"
)

// ErrNotContiguous is returned by Verify when a scope's orders are not 1..N.
var ErrNotContiguous = errors.New("scope order is not contiguous")

// Position is the ordering view of a record.
type Position struct {
	ID       string
	ParentID string
	Order    int
}

// Direction selects the neighbour SwapAdjacent exchanges with.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Repository is the storage the ordering operations run against.
// Implementations return an apperr.ErrNotFound error from GetPosition for
// unknown ids. ListInScope may return positions in any order.
type Repository interface {
	CountInScope(ctx context.Context, parentID string) (int, error)
	ListInScope(ctx context.Context, parentID string) ([]Position, error)
	GetPosition(ctx context.Context, id string) (Position, error)
	SaveOrder(ctx context.Context, id string, order int) error
	SaveOrderBatch(ctx context.Context, orders map[string]int) error
	// SetParent writes parent and order of one record in a single statement.
	SetParent(ctx context.Context, id, parentID string, order int) error
	ScopeExists(ctx context.Context, parentID string) (bool, error)
}

// Manager implements the scope-local reordering operations.
type Manager struct {
	repo Repository
}

// NewManager creates a Manager over a transaction-bound repository.
func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

// NextOrder returns the order an appended item receives.
func (m *Manager) NextOrder(ctx context.Context, parentID string) (int, error) {
	if err := m.requireScope(ctx, parentID); err != nil {
		return 0, err
	}
	n, err := m.repo.CountInScope(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("counting scope %s: %w", parentID, err)
	}
	return n + 1, nil
}

// InsertAt opens a slot at requested (clamped to [1, N+1]) by shifting every
// item at or after it one place down, and returns the slot's order.
func (m *Manager) InsertAt(ctx context.Context, parentID string, requested int) (int, error) {
	if err := m.requireScope(ctx, parentID); err != nil {
		return 0, err
	}
	items, err := m.list(ctx, parentID)
	if err != nil {
		return 0, err
	}

	order := clamp(requested, 1, len(items)+1)
	updates := make(map[string]int)
	for _, it := range items {
		if it.Order >= order {
			updates[it.ID] = it.Order + 1
		}
	}
	if err := m.save(ctx, updates); err != nil {
		return 0, err
	}
	return order, nil
}

// CloseGap shifts every item after removedOrder one place up. It is called
// after the item holding removedOrder left the scope.
func (m *Manager) CloseGap(ctx context.Context, parentID string, removedOrder int) error {
	if err := m.requireScope(ctx, parentID); err != nil {
		return err
	}
	items, err := m.list(ctx, parentID)
	if err != nil {
		return err
	}

	updates := make(map[string]int)
	for _, it := range items {
		if it.Order > removedOrder {
			updates[it.ID] = it.Order - 1
		}
	}
	return m.save(ctx, updates)
}

// SwapAdjacent exchanges the order of itemID with its neighbour in the given
// direction. It returns false, changing nothing, when the item is already the
// first (Up) or last (Down) of its scope.
func (m *Manager) SwapAdjacent(ctx context.Context, parentID, itemID string, dir Direction) (bool, error) {
	pos, err := m.position(ctx, parentID, itemID)
	if err != nil {
		return false, err
	}
	items, err := m.list(ctx, parentID)
	if err != nil {
		return false, err
	}

	var target int
	switch dir {
	case Up:
		if pos.Order <= 1 {
			return false, nil
		}
		target = pos.Order - 1
	case Down:
		if pos.Order >= len(items) {
			return false, nil
		}
		target = pos.Order + 1
	default:
		return false, apperr.Validation("unknown direction %s", dir)
	}

	for _, it := range items {
		if it.Order == target && it.ID != pos.ID {
			return true, m.save(ctx, map[string]int{
				pos.ID: target,
				it.ID:  pos.Order,
			})
		}
	}
	return false, nil
}

// MoveTo places itemID at target (clamped to [1, N]) and shifts the items
// between its old and new order by one to keep the scope dense. It returns
// the order the item ends up with.
func (m *Manager) MoveTo(ctx context.Context, parentID, itemID string, target int) (int, error) {
	pos, err := m.position(ctx, parentID, itemID)
	if err != nil {
		return 0, err
	}
	items, err := m.list(ctx, parentID)
	if err != nil {
		return 0, err
	}

	target = clamp(target, 1, len(items))
	current := pos.Order
	if target == current {
		return current, nil
	}

	updates := map[string]int{pos.ID: target}
	for _, it := range items {
		if it.ID == pos.ID {
			continue
		}
		switch {
		case target > current && it.Order > current && it.Order <= target:
			updates[it.ID] = it.Order - 1
		case target < current && it.Order >= target && it.Order < current:
			updates[it.ID] = it.Order + 1
		}
	}
	if err := m.save(ctx, updates); err != nil {
		return 0, err
	}
	return target, nil
}

// MoveToParent moves itemID from fromParentID into toParentID at target, or
// appends it when target is nil. Both scopes stay dense. It returns the order
// the item ends up with in the destination.
func (m *Manager) MoveToParent(ctx context.Context, itemID, fromParentID, toParentID string, target *int) (int, error) {
	pos, err := m.position(ctx, fromParentID, itemID)
	if err != nil {
		return 0, err
	}

	if fromParentID == toParentID {
		if target == nil {
			return pos.Order, nil
		}
		return m.MoveTo(ctx, fromParentID, itemID, *target)
	}

	if err := m.requireScope(ctx, toParentID); err != nil {
		return 0, err
	}

	// The item keeps its old order until SetParent, and CloseGap only touches
	// orders strictly greater than it.
	if err := m.CloseGap(ctx, fromParentID, pos.Order); err != nil {
		return 0, err
	}

	var order int
	if target == nil {
		order, err = m.NextOrder(ctx, toParentID)
	} else {
		order, err = m.InsertAt(ctx, toParentID, *target)
	}
	if err != nil {
		return 0, err
	}

	if err := m.repo.SetParent(ctx, itemID, toParentID, order); err != nil {
		return 0, fmt.Errorf("reparenting %s: %w", itemID, err)
	}
	return order, nil
}

// Normalize renumbers a scope to 1..N keeping the relative order of its items
// (ties broken by id). It returns how many items changed.
func (m *Manager) Normalize(ctx context.Context, parentID string) (int, error) {
	items, err := m.list(ctx, parentID)
	if err != nil {
		return 0, err
	}
	Sort(items)

	updates := make(map[string]int)
	for i, it := range items {
		if it.Order != i+1 {
			updates[it.ID] = i + 1
		}
	}
	if err := m.save(ctx, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

// Verify reports ErrNotContiguous when the orders in a scope are not 1..N.
func (m *Manager) Verify(ctx context.Context, parentID string) error {
	items, err := m.list(ctx, parentID)
	if err != nil {
		return err
	}
	if !Contiguous(items) {
		return fmt.Errorf("%w: %s has orders %v", ErrNotContiguous, parentID, orders(items))
	}
	return nil
}

// Contiguous reports whether the orders of items are exactly 1..len(items).
func Contiguous(items []Position) bool {
	seen := make([]bool, len(items)+1)
	for _, it := range items {
		if it.Order < 1 || it.Order > len(items) || seen[it.Order] {
			return false
		}
		seen[it.Order] = true
	}
	return true
}

// Sort orders positions by order, then id.
func Sort(items []Position) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
}

func (m *Manager) requireScope(ctx context.Context, parentID string) error {
	ok, err := m.repo.ScopeExists(ctx, parentID)
	if err != nil {
		return fmt.Errorf("checking scope %s: %w", parentID, err)
	}
	if !ok {
		return apperr.NotFound("collection %s", parentID)
	}
	return nil
}

// position loads itemID and checks that it belongs to parentID.
func (m *Manager) position(ctx context.Context, parentID, itemID string) (Position, error) {
	pos, err := m.repo.GetPosition(ctx, itemID)
	if err != nil {
		return Position{}, err
	}
	if pos.ParentID != parentID {
		return Position{}, apperr.NotFound("item %s in collection %s", itemID, parentID)
	}
	return pos, nil
}

func (m *Manager) list(ctx context.Context, parentID string) ([]Position, error) {
	items, err := m.repo.ListInScope(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing scope %s: %w", parentID, err)
	}
	return items, nil
}

func (m *Manager) save(ctx context.Context, updates map[string]int) error {
	switch len(updates) {
	case 0:
		return nil
	case 1:
		for id, order := range updates {
			if err := m.repo.SaveOrder(ctx, id, order); err != nil {
				return fmt.Errorf("saving order of %s: %w", id, err)
			}
		}
		return nil
	default:
		if err := m.repo.SaveOrderBatch(ctx, updates); err != nil {
			return fmt.Errorf("saving %d orders: %w", len(updates), err)
		}
		return nil
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orders(items []Position) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Order
	}
	sort.Ints(out)
	return out
}
