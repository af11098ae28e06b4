package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/ordering"
	"github.com/erazemk/sangam/internal/store"
)

type testEnv struct {
	db            *sql.DB
	content       *store.Content
	slideshows    *SlideshowService
	slides        *SlideService
	announcements *AnnouncementService
	books         *BookService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	content := store.NewContent(database)
	return &testEnv{
		db:            database,
		content:       content,
		slideshows:    NewSlideshowService(content),
		slides:        NewSlideService(content),
		announcements: NewAnnouncementService(content),
		books:         NewBookService(database),
	}
}

func (e *testEnv) slideshow(t *testing.T, page, section string) *model.Slideshow {
	t.Helper()
	s, err := e.slideshows.Create(context.Background(), SlideshowInput{Page: page, Section: section})
	require.NoError(t, err)
	return s
}

// addSlides appends n slides titled by their creation index.
func (e *testEnv) addSlides(t *testing.T, slideshowID string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range n {
		s, err := e.slides.Create(context.Background(), slideshowID,
			SlideInput{Title: model.Text{En: "Slide", Ta: "படம்"}}, nil)
		require.NoError(t, err)
		ids[i] = s.ID
	}
	return ids
}

// slideIDs returns the ids of a slideshow's slides by order and checks the
// scope is dense.
func (e *testEnv) slideIDs(t *testing.T, slideshowID string) []string {
	t.Helper()
	require.NoError(t, ordering.NewManager(e.content.Slides()).Verify(context.Background(), slideshowID))
	slides, err := e.content.Slides().List(context.Background(), slideshowID, false)
	require.NoError(t, err)
	ids := make([]string, len(slides))
	for i, s := range slides {
		ids[i] = s.ID
	}
	return ids
}

func ptr[T any](v T) *T { return &v }
