package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
)

func newTestContent(t *testing.T) *Content {
	t.Helper()
	return NewContent(db.NewTestDB(t))
}

func seedSlideshow(t *testing.T, c ContentRepos, page, section string) *model.Slideshow {
	t.Helper()
	now := time.Now().UTC()
	s := &model.Slideshow{
		ID:         uuid.New().String(),
		Page:       page,
		Section:    section,
		Title:      model.Text{En: page + " " + section},
		IntervalMS: model.DefaultDurationMS,
		Autoplay:   true,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, c.Slideshows().Insert(context.Background(), s))
	return s
}

// seedSlides appends n slides with orders 1..n and returns their ids in order.
func seedSlides(t *testing.T, c ContentRepos, slideshowID string, n int) []string {
	t.Helper()
	ctx := context.Background()
	start, err := c.Slides().CountInScope(ctx, slideshowID)
	require.NoError(t, err)

	ids := make([]string, n)
	for i := range n {
		now := time.Now().UTC()
		s := &model.Slide{
			ID:          uuid.New().String(),
			SlideshowID: slideshowID,
			Order:       start + i + 1,
			IsActive:    true,
			Title:       model.Text{En: fmt.Sprintf("Slide %d", start+i+1), Ta: "படம்"},
			DurationMS:  model.DefaultDurationMS,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, c.Slides().Insert(ctx, s))
		ids[i] = s.ID
	}
	return ids
}

func seedAnnouncements(t *testing.T, c ContentRepos, page string, n int) []string {
	t.Helper()
	ctx := context.Background()
	start, err := c.Announcements().CountInScope(ctx, page)
	require.NoError(t, err)

	ids := make([]string, n)
	for i := range n {
		now := time.Now().UTC()
		a := &model.Announcement{
			ID:        uuid.New().String(),
			Page:      page,
			Order:     start + i + 1,
			IsActive:  true,
			Title:     model.Text{En: fmt.Sprintf("Notice %d", start+i+1)},
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, c.Announcements().Insert(ctx, a))
		ids[i] = a.ID
	}
	return ids
}

// slideOrders returns slide ids of a slideshow in order.
func slideOrders(t *testing.T, c ContentRepos, slideshowID string) []string {
	t.Helper()
	slides, err := c.Slides().List(context.Background(), slideshowID, false)
	require.NoError(t, err)
	ids := make([]string, len(slides))
	for i, s := range slides {
		require.Equal(t, i+1, s.Order, "slide %s", s.ID)
		ids[i] = s.ID
	}
	return ids
}
