package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/store"
)

// SlideshowInput is the payload of a new slideshow.
type SlideshowInput struct {
	Page       string     `json:"page"`
	Section    string     `json:"section"`
	Title      model.Text `json:"title"`
	IntervalMS int        `json:"interval_ms"`
	Autoplay   *bool      `json:"autoplay"`
	IsActive   *bool      `json:"is_active"`
}

// SlideshowPatch changes a slideshow. Nil fields are left alone.
type SlideshowPatch struct {
	Page       *string     `json:"page"`
	Section    *string     `json:"section"`
	Title      *model.Text `json:"title"`
	IntervalMS *int        `json:"interval_ms"`
	Autoplay   *bool       `json:"autoplay"`
	IsActive   *bool       `json:"is_active"`
}

// PublicSlideshow is a slideshow with its visible slides.
type PublicSlideshow struct {
	model.Slideshow
	Slides []model.Slide `json:"slides"`
}

// SlideshowService manages slideshows, the parents of slides. Only one
// slideshow may occupy a page section.
type SlideshowService struct {
	content store.ContentStore
}

func NewSlideshowService(content store.ContentStore) *SlideshowService {
	return &SlideshowService{content: content}
}

func (s *SlideshowService) Get(ctx context.Context, id string) (*model.Slideshow, error) {
	return s.content.Slideshows().Get(ctx, id)
}

func (s *SlideshowService) List(ctx context.Context, page string) ([]model.Slideshow, error) {
	return s.content.Slideshows().List(ctx, normalizeSlug(page))
}

func (s *SlideshowService) Create(ctx context.Context, in SlideshowInput) (*model.Slideshow, error) {
	show := &model.Slideshow{
		ID:         uuid.New().String(),
		Page:       normalizeSlug(in.Page),
		Section:    normalizeSlug(in.Section),
		Title:      in.Title.Normalize(),
		IntervalMS: model.ClampDuration(in.IntervalMS),
		Autoplay:   in.Autoplay == nil || *in.Autoplay,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if err := validateSlideshow(show); err != nil {
		return nil, err
	}
	show.CreatedAt = now()
	show.UpdatedAt = show.CreatedAt

	if err := s.content.Slideshows().Insert(ctx, show); err != nil {
		return nil, err
	}
	return show, nil
}

func (s *SlideshowService) Update(ctx context.Context, id string, patch SlideshowPatch) (*model.Slideshow, error) {
	var updated *model.Slideshow
	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		cur, err := tx.Slideshows().Get(ctx, id)
		if err != nil {
			return err
		}
		if patch.Page != nil {
			cur.Page = normalizeSlug(*patch.Page)
		}
		if patch.Section != nil {
			cur.Section = normalizeSlug(*patch.Section)
		}
		if patch.Title != nil {
			cur.Title = patch.Title.Normalize()
		}
		if patch.IntervalMS != nil {
			cur.IntervalMS = model.ClampDuration(*patch.IntervalMS)
		}
		if patch.Autoplay != nil {
			cur.Autoplay = *patch.Autoplay
		}
		if patch.IsActive != nil {
			cur.IsActive = *patch.IsActive
		}
		if err := validateSlideshow(cur); err != nil {
			return err
		}
		cur.UpdatedAt = now()
		if err := tx.Slideshows().Update(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a slideshow together with its slides.
func (s *SlideshowService) Delete(ctx context.Context, id string) error {
	return s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		return tx.Slideshows().Delete(ctx, id)
	})
}

// Public returns the active slideshow of a page section with its active
// slides in order.
func (s *SlideshowService) Public(ctx context.Context, page, section string) (*PublicSlideshow, error) {
	page, section = normalizeSlug(page), normalizeSlug(section)
	if err := validateSlug("page", page); err != nil {
		return nil, err
	}
	if err := validateSlug("section", section); err != nil {
		return nil, err
	}

	show, err := s.content.Slideshows().FindByPlacement(ctx, page, section)
	if err != nil {
		return nil, err
	}
	if !show.IsActive {
		return nil, apperr.NotFound("slideshow for page %q section %q", page, section)
	}
	slides, err := s.content.Slides().List(ctx, show.ID, true)
	if err != nil {
		return nil, err
	}
	if slides == nil {
		slides = []model.Slide{}
	}
	return &PublicSlideshow{Slideshow: *show, Slides: slides}, nil
}

func validateSlideshow(s *model.Slideshow) error {
	if err := validateSlug("page", s.Page); err != nil {
		return err
	}
	return validateSlug("section", s.Section)
}
