package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/ordering"
)

// orderTable describes a table whose rows are ordered within a scope column.
// All names are compile-time constants, never user input.
type orderTable struct {
	noun        string
	table       string
	scope       string
	parentTable string // empty when every non-empty scope key is valid
}

var (
	slideOrder = orderTable{
		noun:        "slide",
		table:       "slides",
		scope:       "slideshow_id",
		parentTable: "slideshows",
	}
	announcementOrder = orderTable{
		noun:  "announcement",
		table: "announcements",
		scope: "page",
	}
)

// orderRepo implements ordering.Repository over one orderTable. Every order
// write also bumps updated_at.
type orderRepo struct {
	q db.DBTX
	t orderTable
}

var _ ordering.Repository = orderRepo{}

func (r orderRepo) CountInScope(ctx context.Context, parentID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+r.t.table+` WHERE `+r.t.scope+` = ?`, parentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %ss: %w", r.t.noun, err)
	}
	return n, nil
}

func (r orderRepo) ListInScope(ctx context.Context, parentID string) ([]ordering.Position, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, `+r.t.scope+`, sort_order FROM `+r.t.table+`
		 WHERE `+r.t.scope+` = ? ORDER BY sort_order, id`, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s positions: %w", r.t.noun, err)
	}
	defer rows.Close()

	var out []ordering.Position
	for rows.Next() {
		var p ordering.Position
		if err := rows.Scan(&p.ID, &p.ParentID, &p.Order); err != nil {
			return nil, fmt.Errorf("scanning %s position: %w", r.t.noun, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r orderRepo) GetPosition(ctx context.Context, id string) (ordering.Position, error) {
	var p ordering.Position
	err := r.q.QueryRowContext(ctx,
		`SELECT id, `+r.t.scope+`, sort_order FROM `+r.t.table+` WHERE id = ?`, id,
	).Scan(&p.ID, &p.ParentID, &p.Order)
	if err == sql.ErrNoRows {
		return ordering.Position{}, apperr.NotFound("%s %s", r.t.noun, id)
	}
	if err != nil {
		return ordering.Position{}, fmt.Errorf("getting %s position: %w", r.t.noun, err)
	}
	return p, nil
}

func (r orderRepo) SaveOrder(ctx context.Context, id string, order int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE `+r.t.table+` SET sort_order = ?, updated_at = ? WHERE id = ?`,
		order, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("saving %s order: %w", r.t.noun, err)
	}
	return checkAffected(res, r.t.noun, id)
}

// SaveOrderBatch rewrites all given orders in one UPDATE ... CASE statement.
func (r orderRepo) SaveOrderBatch(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	args := make([]any, 0, len(ids)*3+1)
	b.WriteString(`UPDATE ` + r.t.table + ` SET sort_order = CASE id`)
	for _, id := range ids {
		b.WriteString(` WHEN ? THEN ?`)
		args = append(args, id, orders[id])
	}
	b.WriteString(` END, updated_at = ? WHERE id IN (` + placeholders(len(ids)) + `)`)
	args = append(args, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.q.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return fmt.Errorf("saving %s orders: %w", r.t.noun, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if int(n) != len(ids) {
		return apperr.NotFound("%d of %d %ss", len(ids)-int(n), len(ids), r.t.noun)
	}
	return nil
}

func (r orderRepo) SetParent(ctx context.Context, id, parentID string, order int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE `+r.t.table+` SET `+r.t.scope+` = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		parentID, order, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("moving %s: %w", r.t.noun, err)
	}
	return checkAffected(res, r.t.noun, id)
}

func (r orderRepo) ScopeExists(ctx context.Context, parentID string) (bool, error) {
	if parentID == "" {
		return false, nil
	}
	if r.t.parentTable == "" {
		return true, nil
	}
	var ok bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.t.parentTable+` WHERE id = ?)`, parentID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", r.t.parentTable, err)
	}
	return ok, nil
}
