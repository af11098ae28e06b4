package ordering

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/apperr"
)

// memRepo is an in-memory Repository. It counts writes so tests can assert
// that no-ops touch nothing.
type memRepo struct {
	scopes map[string]bool
	items  map[string]Position
	writes int
}

func newMemRepo(scopes ...string) *memRepo {
	r := &memRepo{scopes: map[string]bool{}, items: map[string]Position{}}
	for _, s := range scopes {
		r.scopes[s] = true
	}
	return r
}

// seed adds n items to scope with ids "<scope>-1".."<scope>-n" at orders 1..n.
func (r *memRepo) seed(scope string, n int) {
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%s-%d", scope, i)
		r.items[id] = Position{ID: id, ParentID: scope, Order: i}
	}
}

func (r *memRepo) orderOf(id string) int { return r.items[id].Order }

func (r *memRepo) CountInScope(_ context.Context, parentID string) (int, error) {
	n := 0
	for _, it := range r.items {
		if it.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListInScope(_ context.Context, parentID string) ([]Position, error) {
	var out []Position
	for _, it := range r.items {
		if it.ParentID == parentID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memRepo) GetPosition(_ context.Context, id string) (Position, error) {
	it, ok := r.items[id]
	if !ok {
		return Position{}, apperr.NotFound("item %s", id)
	}
	return it, nil
}

func (r *memRepo) SaveOrder(_ context.Context, id string, order int) error {
	it := r.items[id]
	it.Order = order
	r.items[id] = it
	r.writes++
	return nil
}

func (r *memRepo) SaveOrderBatch(ctx context.Context, orders map[string]int) error {
	for id, order := range orders {
		if err := r.SaveOrder(ctx, id, order); err != nil {
			return err
		}
	}
	return nil
}

func (r *memRepo) SetParent(_ context.Context, id, parentID string, order int) error {
	r.items[id] = Position{ID: id, ParentID: parentID, Order: order}
	r.writes++
	return nil
}

func (r *memRepo) ScopeExists(_ context.Context, parentID string) (bool, error) {
	return r.scopes[parentID], nil
}

func (r *memRepo) add(id, scope string, order int) {
	r.items[id] = Position{ID: id, ParentID: scope, Order: order}
}

func (r *memRepo) remove(id string) {
	delete(r.items, id)
}

func assertContiguous(t *testing.T, r *memRepo, scopes ...string) {
	t.Helper()
	for _, s := range scopes {
		items, _ := r.ListInScope(context.Background(), s)
		assert.True(t, Contiguous(items), "scope %s not contiguous: %v", s, orders(items))
	}
}

func TestNextOrder(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo("a", "empty")
	r.seed("a", 2)
	m := NewManager(r)

	next, err := m.NextOrder(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	next, err = m.NextOrder(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = m.NextOrder(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInsertAtClamps(t *testing.T) {
	ctx := context.Background()

	t.Run("zero clamps to first", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.InsertAt(ctx, "a", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, order)
		r.add("new", "a", order)

		assert.Equal(t, 2, r.orderOf("a-1"))
		assert.Equal(t, 3, r.orderOf("a-2"))
		assert.Equal(t, 4, r.orderOf("a-3"))
		assertContiguous(t, r, "a")
	})

	t.Run("large clamps to append", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.InsertAt(ctx, "a", 999)
		require.NoError(t, err)
		assert.Equal(t, 4, order)
		assert.Zero(t, r.writes, "appending must not shift anything")
		r.add("new", "a", order)
		assertContiguous(t, r, "a")
	})

	t.Run("middle shifts tail", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.InsertAt(ctx, "a", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, order)
		r.add("new", "a", order)

		assert.Equal(t, 1, r.orderOf("a-1"))
		assert.Equal(t, 3, r.orderOf("a-2"))
		assert.Equal(t, 4, r.orderOf("a-3"))
		assertContiguous(t, r, "a")
	})

	t.Run("missing scope", func(t *testing.T) {
		m := NewManager(newMemRepo())
		_, err := m.InsertAt(ctx, "nope", 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCloseGapAfterDelete(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo("a")
	r.seed("a", 3)
	m := NewManager(r)

	r.remove("a-2")
	require.NoError(t, m.CloseGap(ctx, "a", 2))

	assert.Equal(t, 1, r.orderOf("a-1"))
	assert.Equal(t, 2, r.orderOf("a-3"))
	assertContiguous(t, r, "a")
}

func TestInsertThenCloseGapRoundTrip(t *testing.T) {
	ctx := context.Background()
	for at := 1; at <= 5; at++ {
		r := newMemRepo("a")
		r.seed("a", 4)
		m := NewManager(r)

		before := map[string]int{}
		for id, it := range r.items {
			before[id] = it.Order
		}

		order, err := m.InsertAt(ctx, "a", at)
		require.NoError(t, err)
		r.add("tmp", "a", order)
		r.remove("tmp")
		require.NoError(t, m.CloseGap(ctx, "a", order))

		for id, want := range before {
			assert.Equal(t, want, r.orderOf(id), "insert at %d: %s moved", at, id)
		}
	}
}

func TestSwapAdjacent(t *testing.T) {
	ctx := context.Background()

	t.Run("up at top is a no-op", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 4)
		m := NewManager(r)

		ok, err := m.SwapAdjacent(ctx, "a", "a-1", Up)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, r.writes)
	})

	t.Run("down at bottom is a no-op", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 4)
		m := NewManager(r)

		ok, err := m.SwapAdjacent(ctx, "a", "a-4", Down)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, r.writes)
	})

	t.Run("single item", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 1)
		m := NewManager(r)

		up, err := m.SwapAdjacent(ctx, "a", "a-1", Up)
		require.NoError(t, err)
		down, err := m.SwapAdjacent(ctx, "a", "a-1", Down)
		require.NoError(t, err)
		assert.False(t, up)
		assert.False(t, down)
	})

	t.Run("swap with neighbours", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 4)
		m := NewManager(r)

		ok, err := m.SwapAdjacent(ctx, "a", "a-3", Up)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, r.orderOf("a-3"))
		assert.Equal(t, 3, r.orderOf("a-2"))

		ok, err = m.SwapAdjacent(ctx, "a", "a-1", Down)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, r.orderOf("a-1"))
		assert.Equal(t, 1, r.orderOf("a-3"))
		assertContiguous(t, r, "a")
	})

	t.Run("item from another scope", func(t *testing.T) {
		r := newMemRepo("a", "b")
		r.seed("a", 2)
		r.seed("b", 2)
		m := NewManager(r)

		_, err := m.SwapAdjacent(ctx, "a", "b-2", Up)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestMoveTo(t *testing.T) {
	ctx := context.Background()

	t.Run("first to last", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.MoveTo(ctx, "a", "a-1", 3)
		require.NoError(t, err)
		assert.Equal(t, 3, order)
		assert.Equal(t, 3, r.orderOf("a-1"))
		assert.Equal(t, 1, r.orderOf("a-2"))
		assert.Equal(t, 2, r.orderOf("a-3"))
	})

	t.Run("last to first", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 4)
		m := NewManager(r)

		_, err := m.MoveTo(ctx, "a", "a-4", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, r.orderOf("a-4"))
		assert.Equal(t, 2, r.orderOf("a-1"))
		assert.Equal(t, 3, r.orderOf("a-2"))
		assert.Equal(t, 4, r.orderOf("a-3"))
	})

	t.Run("same order leaves scope untouched", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.MoveTo(ctx, "a", "a-2", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, order)
		assert.Zero(t, r.writes)
		for i := 1; i <= 3; i++ {
			assert.Equal(t, i, r.orderOf(fmt.Sprintf("a-%d", i)))
		}
	})

	t.Run("target is clamped", func(t *testing.T) {
		r := newMemRepo("a")
		r.seed("a", 3)
		m := NewManager(r)

		order, err := m.MoveTo(ctx, "a", "a-2", 50)
		require.NoError(t, err)
		assert.Equal(t, 3, order)

		order, err = m.MoveTo(ctx, "a", "a-2", -7)
		require.NoError(t, err)
		assert.Equal(t, 1, order)
		assertContiguous(t, r, "a")
	})

	t.Run("unknown item", func(t *testing.T) {
		m := NewManager(newMemRepo("a"))
		_, err := m.MoveTo(ctx, "a", "ghost", 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestMoveToParent(t *testing.T) {
	ctx := context.Background()

	t.Run("append to destination", func(t *testing.T) {
		r := newMemRepo("A", "B")
		r.seed("A", 3)
		r.seed("B", 2)
		m := NewManager(r)

		order, err := m.MoveToParent(ctx, "A-2", "A", "B", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, order)

		assert.Equal(t, "B", r.items["A-2"].ParentID)
		assert.Equal(t, 3, r.orderOf("A-2"))
		assert.Equal(t, 1, r.orderOf("A-1"))
		assert.Equal(t, 2, r.orderOf("A-3"))
		assert.Equal(t, 1, r.orderOf("B-1"))
		assert.Equal(t, 2, r.orderOf("B-2"))
		assertContiguous(t, r, "A", "B")
	})

	t.Run("insert at requested order", func(t *testing.T) {
		r := newMemRepo("A", "B")
		r.seed("A", 3)
		r.seed("B", 2)
		m := NewManager(r)

		target := 1
		order, err := m.MoveToParent(ctx, "A-3", "A", "B", &target)
		require.NoError(t, err)
		assert.Equal(t, 1, order)
		assert.Equal(t, 2, r.orderOf("B-1"))
		assert.Equal(t, 3, r.orderOf("B-2"))
		assertContiguous(t, r, "A", "B")
	})

	t.Run("into empty scope", func(t *testing.T) {
		r := newMemRepo("A", "B")
		r.seed("A", 1)
		m := NewManager(r)

		target := 9
		order, err := m.MoveToParent(ctx, "A-1", "A", "B", &target)
		require.NoError(t, err)
		assert.Equal(t, 1, order)
		assertContiguous(t, r, "A", "B")
	})

	t.Run("same parent delegates to MoveTo", func(t *testing.T) {
		r := newMemRepo("A")
		r.seed("A", 3)
		m := NewManager(r)

		target := 3
		order, err := m.MoveToParent(ctx, "A-1", "A", "A", &target)
		require.NoError(t, err)
		assert.Equal(t, 3, order)
		assertContiguous(t, r, "A")
	})

	t.Run("missing destination", func(t *testing.T) {
		r := newMemRepo("A")
		r.seed("A", 2)
		m := NewManager(r)

		_, err := m.MoveToParent(ctx, "A-1", "A", "Z", nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Zero(t, r.writes)
	})

	t.Run("wrong source", func(t *testing.T) {
		r := newMemRepo("A", "B")
		r.seed("A", 2)
		m := NewManager(r)

		_, err := m.MoveToParent(ctx, "A-1", "B", "A", nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestNormalizeAndVerify(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo("a")
	r.add("x", "a", 4)
	r.add("y", "a", 4)
	r.add("z", "a", 10)
	m := NewManager(r)

	assert.ErrorIs(t, m.Verify(ctx, "a"), ErrNotContiguous)

	changed, err := m.Normalize(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, changed)
	assert.Equal(t, 1, r.orderOf("x"))
	assert.Equal(t, 2, r.orderOf("y"))
	assert.Equal(t, 3, r.orderOf("z"))
	assert.NoError(t, m.Verify(ctx, "a"))

	changed, err = m.Normalize(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestContiguous(t *testing.T) {
	tests := []struct {
		orders []int
		want   bool
	}{
		{nil, true},
		{[]int{1}, true},
		{[]int{2, 1, 3}, true},
		{[]int{1, 1}, false},
		{[]int{0, 1}, false},
		{[]int{1, 3}, false},
	}

	for _, tt := range tests {
		items := make([]Position, len(tt.orders))
		for i, o := range tt.orders {
			items[i] = Position{ID: fmt.Sprint(i), Order: o}
		}
		if got := Contiguous(items); got != tt.want {
			t.Errorf("Contiguous(%v) = %v, want %v", tt.orders, got, tt.want)
		}
	}
}

// TestRandomOperationsStayContiguous checks contiguity over
// random sequences of inserts, deletes, swaps, moves and reparents.
func TestRandomOperationsStayContiguous(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	scopes := []string{"A", "B", "C"}

	for trial := 0; trial < 50; trial++ {
		r := newMemRepo(scopes...)
		m := NewManager(r)
		nextID := 0

		for step := 0; step < 200; step++ {
			scope := scopes[rng.Intn(len(scopes))]
			items, _ := r.ListInScope(ctx, scope)

			op := rng.Intn(5)
			if len(items) == 0 {
				op = 0
			}
			var pick Position
			if len(items) > 0 {
				pick = items[rng.Intn(len(items))]
			}

			switch op {
			case 0:
				order, err := m.InsertAt(ctx, scope, rng.Intn(len(items)+4)-1)
				require.NoError(t, err)
				nextID++
				r.add(fmt.Sprintf("n%d", nextID), scope, order)
			case 1:
				r.remove(pick.ID)
				require.NoError(t, m.CloseGap(ctx, scope, pick.Order))
			case 2:
				dir := Up
				if rng.Intn(2) == 0 {
					dir = Down
				}
				ok, err := m.SwapAdjacent(ctx, scope, pick.ID, dir)
				require.NoError(t, err)
				atEdge := (dir == Up && pick.Order == 1) || (dir == Down && pick.Order == len(items))
				assert.Equal(t, !atEdge, ok, "trial %d step %d: swap %s %s", trial, step, pick.ID, dir)
			case 3:
				_, err := m.MoveTo(ctx, scope, pick.ID, rng.Intn(len(items)+2))
				require.NoError(t, err)
			case 4:
				to := scopes[rng.Intn(len(scopes))]
				var target *int
				if rng.Intn(2) == 0 {
					v := rng.Intn(5)
					target = &v
				}
				_, err := m.MoveToParent(ctx, pick.ID, scope, to, target)
				require.NoError(t, err)
			}

			for _, s := range scopes {
				require.NoError(t, m.Verify(ctx, s), "trial %d step %d op %d", trial, step, op)
			}
		}
	}
}
