package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/ordering"
	"github.com/erazemk/sangam/internal/store"
)

// Window bounds when an announcement is shown. Either end may be open.
type Window struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (w Window) validate() error {
	if w.StartsAt != nil && w.EndsAt != nil && !w.EndsAt.After(*w.StartsAt) {
		return apperr.Validation("ends_at must be after starts_at")
	}
	return nil
}

// AnnouncementInput is the payload of a new announcement.
type AnnouncementInput struct {
	Title    model.Text `json:"title"`
	Content  model.Text `json:"content"`
	LinkURL  string     `json:"link_url"`
	IsActive *bool      `json:"is_active"`
	Window
}

// AnnouncementPatch changes an announcement. Nil fields are left alone; a
// non-nil Window replaces both ends.
type AnnouncementPatch struct {
	Page     *string     `json:"page"`
	Order    *int        `json:"order"`
	IsActive *bool       `json:"is_active"`
	Title    *model.Text `json:"title"`
	Content  *model.Text `json:"content"`
	LinkURL  *string     `json:"link_url"`
	Window   *Window     `json:"window"`
}

// AnnouncementService runs the lifecycle of announcements. The ordering scope
// of an announcement is its page.
type AnnouncementService struct {
	content store.ContentStore
}

func NewAnnouncementService(content store.ContentStore) *AnnouncementService {
	return &AnnouncementService{content: content}
}

func (s *AnnouncementService) Get(ctx context.Context, id string) (*model.Announcement, error) {
	return s.content.Announcements().Get(ctx, id)
}

// List returns the announcements of page by order, or of every page when
// page is empty.
func (s *AnnouncementService) List(ctx context.Context, page string) ([]model.Announcement, error) {
	return s.content.Announcements().List(ctx, normalizeSlug(page), false)
}

// Visible returns the announcements of page that are active and inside their
// window at t, by order.
func (s *AnnouncementService) Visible(ctx context.Context, page string, t time.Time) ([]model.Announcement, error) {
	page = normalizeSlug(page)
	if err := validateSlug("page", page); err != nil {
		return nil, err
	}
	all, err := s.content.Announcements().List(ctx, page, true)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Announcement, 0, len(all))
	for _, a := range all {
		if a.VisibleAt(t) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

// Create adds an announcement to page, appended or at order.
func (s *AnnouncementService) Create(ctx context.Context, page string, in AnnouncementInput, order *int) (*model.Announcement, error) {
	a := &model.Announcement{
		ID:       uuid.New().String(),
		Page:     normalizeSlug(page),
		IsActive: in.IsActive == nil || *in.IsActive,
		Title:    in.Title.Normalize(),
		Content:  in.Content.Normalize(),
		LinkURL:  strings.TrimSpace(in.LinkURL),
		StartsAt: in.StartsAt,
		EndsAt:   in.EndsAt,
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}

	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		o, err := place(ctx, ordering.NewManager(tx.Announcements()), a.Page, order)
		if err != nil {
			return err
		}
		a.Order = o
		a.CreatedAt = now()
		a.UpdatedAt = a.CreatedAt
		return tx.Announcements().Insert(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update applies patch. A page change moves the announcement to the end of
// the new page, or to patch.Order when given.
func (s *AnnouncementService) Update(ctx context.Context, id string, patch AnnouncementPatch) (*model.Announcement, error) {
	if patch.Page != nil {
		page := normalizeSlug(*patch.Page)
		if err := validateSlug("page", page); err != nil {
			return nil, err
		}
		patch.Page = &page
	}

	var updated *model.Announcement
	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		cur, err := tx.Announcements().Get(ctx, id)
		if err != nil {
			return err
		}

		reparented, order, err := relocate(ctx, ordering.NewManager(tx.Announcements()),
			id, cur.Page, cur.Order, patch.Page, patch.Order)
		if err != nil {
			return err
		}
		if reparented {
			cur.Page = *patch.Page
		}
		cur.Order = order

		applyAnnouncementPatch(cur, patch)
		if err := validateAnnouncement(cur); err != nil {
			return err
		}
		cur.UpdatedAt = now()
		if err := tx.Announcements().Update(ctx, cur); err != nil {
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

// Delete removes an announcement and closes the gap it leaves.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	return s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		cur, err := tx.Announcements().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Announcements().Delete(ctx, id); err != nil {
			return err
		}
		return ordering.NewManager(tx.Announcements()).CloseGap(ctx, cur.Page, cur.Order)
	})
}

// Apply runs a PATCH action and returns the affected announcement. For
// Duplicate that is the new copy.
func (s *AnnouncementService) Apply(ctx context.Context, id string, action Action) (*model.Announcement, error) {
	var err error
	switch a := action.(type) {
	case ToggleActive:
		err = s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
			cur, err := tx.Announcements().Get(ctx, id)
			if err != nil {
				return err
			}
			cur.IsActive = !cur.IsActive
			cur.UpdatedAt = now()
			return tx.Announcements().Update(ctx, cur)
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
			pos, err := tx.Announcements().GetPosition(ctx, id)
			if err != nil {
				return err
			}
			_, err = ordering.NewManager(tx.Announcements()).MoveTo(ctx, pos.ParentID, id, a.Value)
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
	return s.content.Announcements().Get(ctx, id)
}

func (s *AnnouncementService) step(ctx context.Context, id string, dir ordering.Direction) error {
	return s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		pos, err := tx.Announcements().GetPosition(ctx, id)
		if err != nil {
			return err
		}
		return step(ctx, ordering.NewManager(tx.Announcements()), pos.ParentID, id, "announcement", dir)
	})
}

// Duplicate appends an inactive copy of an announcement to the same page.
func (s *AnnouncementService) Duplicate(ctx context.Context, id string) (*model.Announcement, error) {
	var clone *model.Announcement
	err := s.content.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		src, err := tx.Announcements().Get(ctx, id)
		if err != nil {
			return err
		}
		order, err := ordering.NewManager(tx.Announcements()).NextOrder(ctx, src.Page)
		if err != nil {
			return err
		}

		c := *src
		c.ID = uuid.New().String()
		c.Order = order
		c.IsActive = false
		c.Title = src.Title.WithSuffix(copySuffix)
		c.CreatedAt = now()
		c.UpdatedAt = c.CreatedAt
		if err := tx.Announcements().Insert(ctx, &c); err != nil {
			return err
		}
		clone = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

func applyAnnouncementPatch(cur *model.Announcement, p AnnouncementPatch) {
	if p.IsActive != nil {
		cur.IsActive = *p.IsActive
	}
	if p.Title != nil {
		cur.Title = p.Title.Normalize()
	}
	if p.Content != nil {
		cur.Content = p.Content.Normalize()
	}
	if p.LinkURL != nil {
		cur.LinkURL = strings.TrimSpace(*p.LinkURL)
	}
	if p.Window != nil {
		cur.StartsAt = p.Window.StartsAt
		cur.EndsAt = p.Window.EndsAt
	}
}

func validateAnnouncement(a *model.Announcement) error {
	if err := validateSlug("page", a.Page); err != nil {
		return err
	}
	if a.Title.IsEmpty() {
		return apperr.Validation("title requires English or Tamil text")
	}
	if err := (Window{StartsAt: a.StartsAt, EndsAt: a.EndsAt}).validate(); err != nil {
		return err
	}
	return validateLink("link_url", a.LinkURL)
}
