package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/ordering"
	"github.com/erazemk/sangam/internal/store"
)

// SlideInput is the payload of a new slide.
type SlideInput struct {
	Title      model.Text `json:"title"`
	Subtitle   model.Text `json:"subtitle"`
	ButtonText model.Text `json:"button_text"`
	ImageURL   string     `json:"image_url"`
	LinkURL    string     `json:"link_url"`
	DurationMS int        `json:"duration_ms"`
	IsActive   *bool      `json:"is_active"`
}

// SlidePatch changes a slide. Nil fields are left alone.
type SlidePatch struct {
	SlideshowID *string     `json:"slideshow_id"`
	Order       *int        `json:"order"`
	IsActive    *bool       `json:"is_active"`
	Title       *model.Text `json:"title"`
	Subtitle    *model.Text `json:"subtitle"`
	ButtonText  *model.Text `json:"button_text"`
	ImageURL    *string     `json:"image_url"`
	LinkURL     *string     `json:"link_url"`
	DurationMS  *int        `json:"duration_ms"`
}

// SlideService runs the lifecycle of slides. The ordering scope of a slide is
// its slideshow.
type SlideService struct {
	content store.ContentStore
}

func NewSlideService(content store.ContentStore) *SlideService {
	return &SlideService{content: content}
}

func (s *SlideService) Get(ctx context.Context, id string) (*model.Slide, error) {
	return s.content.Slides().Get(ctx, id)
}

// List returns the slides of a slideshow by order.
func (s *SlideService) List(ctx context.Context, slideshowID string, activeOnly bool) ([]model.Slide, error) {
	if _, err := s.content.Slideshows().Get(ctx, slideshowID); err != nil {
		return nil, err
	}
	return s.content.Slides().List(ctx, slideshowID, activeOnly)
}

// Create adds a slide to slideshowID, appended or at order.
func (s *SlideService) Create(ctx context.Context, slideshowID string, in SlideInput, order *int) (*model.Slide, error) {
	slide := &model.Slide{
		ID:          uuid.New().String(),
		SlideshowID: strings.TrimSpace(slideshowID),
		IsActive:    in.IsActive == nil || *in.IsActive,
		Title:       in.Title.Normalize(),
		Subtitle:    in.Subtitle.Normalize(),
		ButtonText:  in.ButtonText.Normalize(),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		LinkURL:     strings.TrimSpace(in.LinkURL),
		DurationMS:  model.ClampDuration(in.DurationMS),
	}
	if err := validateSlide(slide); err != nil {
		return nil, err
	}

	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		o, err := place(ctx, ordering.NewManager(tx.Slides()), slide.SlideshowID, order)
		if err != nil {
			return err
		}
		slide.Order = o
		slide.CreatedAt = now()
		slide.UpdatedAt = slide.CreatedAt
		return tx.Slides().Insert(ctx, slide)
	})
	if err != nil {
		return nil, err
	}
	return slide, nil
}

// Update applies patch. A slideshow change moves the slide to the new
// slideshow (at patch.Order when given) and records the move.
func (s *SlideService) Update(ctx context.Context, id string, patch SlidePatch) (*model.Slide, error) {
	var updated *model.Slide
	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		cur, err := tx.Slides().Get(ctx, id)
		if err != nil {
			return err
		}

		reparented, order, err := relocate(ctx, ordering.NewManager(tx.Slides()),
			id, cur.SlideshowID, cur.Order, patch.SlideshowID, patch.Order)
		if err != nil {
			return err
		}
		if reparented {
			err := tx.Slides().RecordMove(ctx, &model.SlideMove{
				SlideID:         id,
				FromSlideshowID: cur.SlideshowID,
				ToSlideshowID:   *patch.SlideshowID,
				FromOrder:       cur.Order,
				ToOrder:         order,
				MovedAt:         now(),
				MovedBy:         ActorFromContext(ctx),
			})
			if err != nil {
				return err
			}
			cur.SlideshowID = *patch.SlideshowID
		}
		cur.Order = order

		applySlidePatch(cur, patch)
		if err := validateSlide(cur); err != nil {
			return err
		}
		cur.UpdatedAt = now()
		if err := tx.Slides().Update(ctx, cur); err != nil {
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

// Delete removes a slide and closes the gap it leaves.
func (s *SlideService) Delete(ctx context.Context, id string) error {
	return s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		cur, err := tx.Slides().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Slides().Delete(ctx, id); err != nil {
			return err
		}
		return ordering.NewManager(tx.Slides()).CloseGap(ctx, cur.SlideshowID, cur.Order)
	})
}

// Apply runs a PATCH action and returns the affected slide. For Duplicate
// that is the new copy.
func (s *SlideService) Apply(ctx context.Context, id string, action Action) (*model.Slide, error) {
	var err error
	switch a := action.(type) {
	case ToggleActive:
		err = s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
			cur, err := tx.Slides().Get(ctx, id)
			if err != nil {
				return err
			}
			cur.IsActive = !cur.IsActive
			cur.UpdatedAt = now()
			return tx.Slides().Update(ctx, cur)
		})
	case MoveUp:
		err = s.step(ctx, id, ordering.Up)
	case MoveDown:
		err = s.step(ctx, id, ordering.Down)
	case SetOrder:
		if err := a.validate(); err != nil {
			return nil, err
		}
		err = s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
			pos, err := tx.Slides().GetPosition(ctx, id)
			if err != nil {
				return err
			}
			_, err = ordering.NewManager(tx.Slides()).MoveTo(ctx, pos.ParentID, id, a.Value)
			return err
		})
	case Duplicate:
		return s.Duplicate(ctx, id)
	default:
		return nil, unsupportedAction(action)
	}
	if err != nil {
		return nil, err
	}
	return s.content.Slides().Get(ctx, id)
}

func (s *SlideService) step(ctx context.Context, id string, dir ordering.Direction) error {
	return s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		pos, err := tx.Slides().GetPosition(ctx, id)
		if err != nil {
			return err
		}
		return step(ctx, ordering.NewManager(tx.Slides()), pos.ParentID, id, "slide", dir)
	})
}

// Duplicate appends an inactive copy of a slide, image included, to the same
// slideshow.
func (s *SlideService) Duplicate(ctx context.Context, id string) (*model.Slide, error) {
	var clone *model.Slide
	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		src, err := tx.Slides().Get(ctx, id)
		if err != nil {
			return err
		}
		order, err := ordering.NewManager(tx.Slides()).NextOrder(ctx, src.SlideshowID)
		if err != nil {
			return err
		}

		c := *src
		c.ID = uuid.New().String()
		c.Order = order
		c.IsActive = false
		c.Title = src.Title.WithSuffix(copySuffix)
		c.ImageMime = ""
		c.CreatedAt = now()
		c.UpdatedAt = c.CreatedAt
		if err := tx.Slides().Insert(ctx, &c); err != nil {
			return err
		}

		data, mime, err := tx.Slides().GetImage(ctx, src.ID)
		if err != nil {
			return err
		}
		if data != nil {
			if err := tx.Slides().SetImage(ctx, c.ID, data, mime); err != nil {
				return err
			}
			c.ImageMime = mime
		}
		clone = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// Moves returns the slideshow changes of a slide, newest first.
func (s *SlideService) Moves(ctx context.Context, id string) ([]model.SlideMove, error) {
	if _, err := s.content.Slides().GetPosition(ctx, id); err != nil {
		return nil, err
	}
	return s.content.Slides().ListMoves(ctx, id)
}

// SetImage stores an already processed image.
func (s *SlideService) SetImage(ctx context.Context, id string, data []byte, mime string) error {
	return s.content.Slides().SetImage(ctx, id, data, mime)
}

// Image returns the stored image of a slide. A slide without one is reported
// as not found.
func (s *SlideService) Image(ctx context.Context, id string) ([]byte, string, error) {
	data, mime, err := s.content.Slides().GetImage(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", apperr.NotFound("image of slide %s", id)
	}
	return data, mime, nil
}

func applySlidePatch(cur *model.Slide, p SlidePatch) {
	if p.IsActive != nil {
		cur.IsActive = *p.IsActive
	}
	if p.Title != nil {
		cur.Title = p.Title.Normalize()
	}
	if p.Subtitle != nil {
		cur.Subtitle = p.Subtitle.Normalize()
	}
	if p.ButtonText != nil {
		cur.ButtonText = p.ButtonText.Normalize()
	}
	if p.ImageURL != nil {
		cur.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.LinkURL != nil {
		cur.LinkURL = strings.TrimSpace(*p.LinkURL)
	}
	if p.DurationMS != nil {
		cur.DurationMS = model.ClampDuration(*p.DurationMS)
	}
}

func validateSlide(s *model.Slide) error {
	if s.SlideshowID == "" {
		return apperr.Validation("slideshow_id is required")
	}
	if s.Title.IsEmpty() {
		return apperr.Validation("title requires English or Tamil text")
	}
	return validateLink("link_url", s.LinkURL)
}
