package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
)

const slideColumns = `id, slideshow_id, sort_order, is_active, title_en, title_ta,
	subtitle_en, subtitle_ta, button_en, button_ta, image_url, link_url,
	duration_ms, image_mime, created_at, updated_at`

type slideRepo struct {
	orderRepo
}

func newSlideRepo(q db.DBTX) slideRepo {
	return slideRepo{orderRepo{q: q, t: slideOrder}}
}

func scanSlide(row rowScanner) (*model.Slide, error) {
	s := &model.Slide{}
	var imageMime sql.NullString
	err := row.Scan(&s.ID, &s.SlideshowID, &s.Order, &s.IsActive, &s.Title.En, &s.Title.Ta,
		&s.Subtitle.En, &s.Subtitle.Ta, &s.ButtonText.En, &s.ButtonText.Ta, &s.ImageURL, &s.LinkURL,
		&s.DurationMS, &imageMime, &s.CreatedAt, &s.UpdatedAt)
	s.ImageMime = imageMime.String
	return s, err
}

func (r slideRepo) Insert(ctx context.Context, s *model.Slide) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO slides (id, slideshow_id, sort_order, is_active, title_en, title_ta,
		                     subtitle_en, subtitle_ta, button_en, button_ta, image_url, link_url,
		                     duration_ms, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SlideshowID, s.Order, s.IsActive, s.Title.En, s.Title.Ta,
		s.Subtitle.En, s.Subtitle.Ta, s.ButtonText.En, s.ButtonText.Ta, s.ImageURL, s.LinkURL,
		s.DurationMS, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating slide: %w", err)
	}
	return nil
}

func (r slideRepo) Get(ctx context.Context, id string) (*model.Slide, error) {
	s, err := scanSlide(r.q.QueryRowContext(ctx,
		`SELECT `+slideColumns+` FROM slides WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("slide %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting slide: %w", err)
	}
	return s, nil
}

// List returns the slides of a slideshow by ascending order.
func (r slideRepo) List(ctx context.Context, slideshowID string, activeOnly bool) ([]model.Slide, error) {
	query := `SELECT ` + slideColumns + ` FROM slides WHERE slideshow_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY sort_order, id`

	rows, err := r.q.QueryContext(ctx, query, slideshowID)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}
	defer rows.Close()

	var out []model.Slide
	for rows.Next() {
		s, err := scanSlide(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slide: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r slideRepo) Update(ctx context.Context, s *model.Slide) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE slides SET is_active = ?, title_en = ?, title_ta = ?, subtitle_en = ?, subtitle_ta = ?,
		        button_en = ?, button_ta = ?, image_url = ?, link_url = ?, duration_ms = ?, updated_at = ?
		 WHERE id = ?`,
		s.IsActive, s.Title.En, s.Title.Ta, s.Subtitle.En, s.Subtitle.Ta,
		s.ButtonText.En, s.ButtonText.Ta, s.ImageURL, s.LinkURL, s.DurationMS, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating slide: %w", err)
	}
	return checkAffected(res, "slide", s.ID)
}

func (r slideRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM slides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting slide: %w", err)
	}
	return checkAffected(res, "slide", id)
}

// SetImage stores the uploaded image of a slide.
func (r slideRepo) SetImage(ctx context.Context, id string, data []byte, mime string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE slides SET image = ?, image_mime = ?, updated_at = ? WHERE id = ?`,
		data, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting slide image: %w", err)
	}
	return checkAffected(res, "slide", id)
}

// GetImage returns the uploaded image of a slide, or nil data when it has none.
func (r slideRepo) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := r.q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM slides WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", apperr.NotFound("slide %s", id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting slide image: %w", err)
	}
	return image, mime.String, nil
}

// RecordMove appends a slideshow change to the slide's history.
func (r slideRepo) RecordMove(ctx context.Context, m *model.SlideMove) error {
	var movedBy sql.NullString
	if m.MovedBy != "" {
		movedBy = sql.NullString{String: m.MovedBy, Valid: true}
	}
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO slide_moves (slide_id, from_slideshow_id, to_slideshow_id, from_order, to_order, moved_at, moved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.SlideID, m.FromSlideshowID, m.ToSlideshowID, m.FromOrder, m.ToOrder, m.MovedAt, movedBy,
	)
	if err != nil {
		return fmt.Errorf("recording slide move: %w", err)
	}
	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting slide move id: %w", err)
	}
	return nil
}

// ListMoves returns a slide's moves, newest first.
func (r slideRepo) ListMoves(ctx context.Context, slideID string) ([]model.SlideMove, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, slide_id, from_slideshow_id, to_slideshow_id, from_order, to_order, moved_at, moved_by
		 FROM slide_moves WHERE slide_id = ?
		 ORDER BY moved_at DESC, id DESC`, slideID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing slide moves: %w", err)
	}
	defer rows.Close()

	var moves []model.SlideMove
	for rows.Next() {
		var m model.SlideMove
		var movedBy sql.NullString
		if err := rows.Scan(&m.ID, &m.SlideID, &m.FromSlideshowID, &m.ToSlideshowID,
			&m.FromOrder, &m.ToOrder, &m.MovedAt, &movedBy); err != nil {
			return nil, fmt.Errorf("scanning slide move: %w", err)
		}
		m.MovedBy = movedBy.String
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
