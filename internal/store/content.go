package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/sangam/internal/db"
)

// repos binds the content repositories to one DBTX.
type repos struct {
	q db.DBTX
}

func (r repos) Slideshows() SlideshowRepo       { return slideshowRepo{q: r.q} }
func (r repos) Slides() SlideRepo               { return newSlideRepo(r.q) }
func (r repos) Announcements() AnnouncementRepo { return newAnnouncementRepo(r.q) }

// Content is the SQLite ContentStore.
type Content struct {
	repos
	uow db.UnitOfWork
}

var _ ContentStore = (*Content)(nil)

// NewContent creates a ContentStore over database.
func NewContent(database *sql.DB) *Content {
	return NewContentWithUnitOfWork(database, db.NewUnitOfWork(database))
}

// NewContentWithUnitOfWork creates a ContentStore whose transactions come
// from uow. Tests use it to inject failures.
func NewContentWithUnitOfWork(q db.DBTX, uow db.UnitOfWork) *Content {
	return &Content{repos: repos{q: q}, uow: uow}
}

func (c *Content) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ContentRepos) error) error {
	return c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, repos{q: tx})
	})
}
