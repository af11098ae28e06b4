package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
)

const slideshowColumns = `s.id, s.page, s.section, s.title_en, s.title_ta, s.interval_ms,
	s.autoplay, s.is_active, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM slides WHERE slideshow_id = s.id)`

type slideshowRepo struct {
	q db.DBTX
}

func scanSlideshow(row rowScanner) (*model.Slideshow, error) {
	s := &model.Slideshow{}
	err := row.Scan(&s.ID, &s.Page, &s.Section, &s.Title.En, &s.Title.Ta, &s.IntervalMS,
		&s.Autoplay, &s.IsActive, &s.CreatedAt, &s.UpdatedAt, &s.SlideCount)
	return s, err
}

func (r slideshowRepo) Insert(ctx context.Context, s *model.Slideshow) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO slideshows (id, page, section, title_en, title_ta, interval_ms,
		                         autoplay, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Page, s.Section, s.Title.En, s.Title.Ta, s.IntervalMS,
		s.Autoplay, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("slideshow for page %q section %q already exists", s.Page, s.Section)
	}
	if err != nil {
		return fmt.Errorf("creating slideshow: %w", err)
	}
	return nil
}

func (r slideshowRepo) Get(ctx context.Context, id string) (*model.Slideshow, error) {
	s, err := scanSlideshow(r.q.QueryRowContext(ctx,
		`SELECT `+slideshowColumns+` FROM slideshows s WHERE s.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("slideshow %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting slideshow: %w", err)
	}
	return s, nil
}

func (r slideshowRepo) FindByPlacement(ctx context.Context, page, section string) (*model.Slideshow, error) {
	s, err := scanSlideshow(r.q.QueryRowContext(ctx,
		`SELECT `+slideshowColumns+` FROM slideshows s WHERE s.page = ? AND s.section = ?`,
		page, section,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("slideshow for page %q section %q", page, section)
	}
	if err != nil {
		return nil, fmt.Errorf("finding slideshow: %w", err)
	}
	return s, nil
}

// List returns slideshows ordered by page and section, optionally only those
// of one page.
func (r slideshowRepo) List(ctx context.Context, page string) ([]model.Slideshow, error) {
	query := `SELECT ` + slideshowColumns + ` FROM slideshows s`
	var args []any
	if page != "" {
		query += ` WHERE s.page = ?`
		args = append(args, page)
	}
	query += ` ORDER BY s.page, s.section`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing slideshows: %w", err)
	}
	defer rows.Close()

	var out []model.Slideshow
	for rows.Next() {
		s, err := scanSlideshow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slideshow: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r slideshowRepo) Update(ctx context.Context, s *model.Slideshow) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE slideshows SET page = ?, section = ?, title_en = ?, title_ta = ?,
		        interval_ms = ?, autoplay = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		s.Page, s.Section, s.Title.En, s.Title.Ta,
		s.IntervalMS, s.Autoplay, s.IsActive, s.UpdatedAt, s.ID,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("slideshow for page %q section %q already exists", s.Page, s.Section)
	}
	if err != nil {
		return fmt.Errorf("updating slideshow: %w", err)
	}
	return checkAffected(res, "slideshow", s.ID)
}

// Delete removes a slideshow. Its slides and their move history go with it
// through ON DELETE CASCADE.
func (r slideshowRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM slideshows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting slideshow: %w", err)
	}
	return checkAffected(res, "slideshow", id)
}
