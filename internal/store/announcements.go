package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
)

const announcementColumns = `id, page, sort_order, is_active, title_en, title_ta,
	content_en, content_ta, link_url, starts_at, ends_at, created_at, updated_at`

type announcementRepo struct {
	orderRepo
}

func newAnnouncementRepo(q db.DBTX) announcementRepo {
	return announcementRepo{orderRepo{q: q, t: announcementOrder}}
}

func scanAnnouncement(row rowScanner) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := row.Scan(&a.ID, &a.Page, &a.Order, &a.IsActive, &a.Title.En, &a.Title.Ta,
		&a.Content.En, &a.Content.Ta, &a.LinkURL, &a.StartsAt, &a.EndsAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r announcementRepo) Insert(ctx context.Context, a *model.Announcement) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO announcements (id, page, sort_order, is_active, title_en, title_ta,
		                           content_en, content_ta, link_url, starts_at, ends_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Page, a.Order, a.IsActive, a.Title.En, a.Title.Ta,
		a.Content.En, a.Content.Ta, a.LinkURL, a.StartsAt, a.EndsAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating announcement: %w", err)
	}
	return nil
}

func (r announcementRepo) Get(ctx context.Context, id string) (*model.Announcement, error) {
	a, err := scanAnnouncement(r.q.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("announcement %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting announcement: %w", err)
	}
	return a, nil
}

// List returns the announcements of a page by ascending order. An empty page
// lists every page, grouped by page.
func (r announcementRepo) List(ctx context.Context, page string, activeOnly bool) ([]model.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE 1=1`
	var args []any
	if page != "" {
		query += ` AND page = ?`
		args = append(args, page)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY page, sort_order, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	defer rows.Close()

	var out []model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning announcement: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListPages returns every page that has at least one announcement.
func (r announcementRepo) ListPages(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT page FROM announcements ORDER BY page`)
	if err != nil {
		return nil, fmt.Errorf("listing announcement pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r announcementRepo) Update(ctx context.Context, a *model.Announcement) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE announcements SET is_active = ?, title_en = ?, title_ta = ?, content_en = ?, content_ta = ?,
		        link_url = ?, starts_at = ?, ends_at = ?, updated_at = ?
		 WHERE id = ?`,
		a.IsActive, a.Title.En, a.Title.Ta, a.Content.En, a.Content.Ta,
		a.LinkURL, a.StartsAt, a.EndsAt, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating announcement: %w", err)
	}
	return checkAffected(res, "announcement", a.ID)
}

func (r announcementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting announcement: %w", err)
	}
	return checkAffected(res, "announcement", id)
}
