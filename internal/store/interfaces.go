package store

import (
	"context"

	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/ordering"
)

// SlideshowRepo stores slideshows. Insert and Update return an
// apperr.ErrConflict error when another slideshow holds the same page and
// section. Delete also removes the slideshow's slides.
type SlideshowRepo interface {
	Insert(ctx context.Context, s *model.Slideshow) error
	Get(ctx context.Context, id string) (*model.Slideshow, error)
	FindByPlacement(ctx context.Context, page, section string) (*model.Slideshow, error)
	List(ctx context.Context, page string) ([]model.Slideshow, error)
	Update(ctx context.Context, s *model.Slideshow) error
	Delete(ctx context.Context, id string) error
}

// SlideRepo stores slides. Its ordering scope is the slideshow id.
// Update writes content fields and IsActive only; order and parent change
// through the ordering.Repository methods.
type SlideRepo interface {
	ordering.Repository
	Insert(ctx context.Context, s *model.Slide) error
	Get(ctx context.Context, id string) (*model.Slide, error)
	List(ctx context.Context, slideshowID string, activeOnly bool) ([]model.Slide, error)
	Update(ctx context.Context, s *model.Slide) error
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id string, data []byte, mime string) error
	GetImage(ctx context.Context, id string) ([]byte, string, error)
	RecordMove(ctx context.Context, m *model.SlideMove) error
	ListMoves(ctx context.Context, slideID string) ([]model.SlideMove, error)
}

// AnnouncementRepo stores announcements. Its ordering scope is the page key.
type AnnouncementRepo interface {
	ordering.Repository
	Insert(ctx context.Context, a *model.Announcement) error
	Get(ctx context.Context, id string) (*model.Announcement, error)
	List(ctx context.Context, page string, activeOnly bool) ([]model.Announcement, error)
	ListPages(ctx context.Context) ([]string, error)
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id string) error
}

// ContentRepos groups the repositories of the ordered content.
type ContentRepos interface {
	Slideshows() SlideshowRepo
	Slides() SlideRepo
	Announcements() AnnouncementRepo
}

// ContentStore is a content backend. Repositories returned directly run
// outside a transaction; WithinTx hands fn repositories bound to one
// transaction that commits when fn returns nil.
type ContentStore interface {
	ContentRepos
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx ContentRepos) error) error
}
