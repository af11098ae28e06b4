package mongostore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/ordering"
	"github.com/erazemk/sangam/internal/service"
	"github.com/erazemk/sangam/internal/store"
)

// newTestStore connects to SANGAM_TEST_MONGO_URI, which must point at a
// replica set, and hands out a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("SANGAM_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SANGAM_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	name := "sangam_test_" + uuid.New().String()[:8]
	s, err := Connect(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Database().Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func seedSlideshow(t *testing.T, s *Store, page, section string) *model.Slideshow {
	t.Helper()
	now := time.Now().UTC()
	show := &model.Slideshow{
		ID:         uuid.New().String(),
		Page:       page,
		Section:    section,
		IntervalMS: model.DefaultDurationMS,
		Autoplay:   true,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Slideshows().Insert(context.Background(), show))
	return show
}

func seedSlides(t *testing.T, s *Store, slideshowID string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	now := time.Now().UTC()
	for i := range n {
		ids[i] = uuid.New().String()
		require.NoError(t, s.Slides().Insert(context.Background(), &model.Slide{
			ID:          ids[i],
			SlideshowID: slideshowID,
			Order:       i + 1,
			IsActive:    true,
			Title:       model.Text{En: fmt.Sprintf("Slide %d", i+1)},
			DurationMS:  model.DefaultDurationMS,
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}
	return ids
}

func slideIDs(t *testing.T, s *Store, slideshowID string) []string {
	t.Helper()
	require.NoError(t, ordering.NewManager(s.Slides()).Verify(context.Background(), slideshowID))
	slides, err := s.Slides().List(context.Background(), slideshowID, false)
	require.NoError(t, err)
	ids := make([]string, len(slides))
	for i, sl := range slides {
		ids[i] = sl.ID
	}
	return ids
}

func TestSlideshowPlacementConflict(t *testing.T) {
	s := newTestStore(t)
	seedSlideshow(t, s, "home", "hero")

	now := time.Now().UTC()
	err := s.Slideshows().Insert(context.Background(), &model.Slideshow{
		ID: uuid.New().String(), Page: "home", Section: "hero", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSlideshowGetCountsSlides(t *testing.T) {
	s := newTestStore(t)
	show := seedSlideshow(t, s, "home", "hero")
	other := seedSlideshow(t, s, "about", "hero")
	seedSlides(t, s, show.ID, 3)

	got, err := s.Slideshows().Get(context.Background(), show.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.SlideCount)

	list, err := s.Slideshows().List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID, "sorted by page")
	assert.Equal(t, 0, list[0].SlideCount)
	assert.Equal(t, 3, list[1].SlideCount)

	_, err = s.Slideshows().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSlideshowDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	show := seedSlideshow(t, s, "home", "hero")
	ids := seedSlides(t, s, show.ID, 2)
	require.NoError(t, s.Slides().RecordMove(ctx, &model.SlideMove{
		SlideID: ids[0], FromSlideshowID: "x", ToSlideshowID: show.ID, FromOrder: 1, ToOrder: 1,
		MovedAt: time.Now().UTC(),
	}))

	require.NoError(t, s.Slideshows().Delete(ctx, show.ID))

	_, err := s.Slides().Get(ctx, ids[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	moves, err := s.Slides().ListMoves(ctx, ids[0])
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestSlideImageIsNotLoadedWithSlide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	show := seedSlideshow(t, s, "home", "hero")
	ids := seedSlides(t, s, show.ID, 1)

	data, _, err := s.Slides().GetImage(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Slides().SetImage(ctx, ids[0], []byte{1, 2, 3}, "image/png"))
	data, mime, err := s.Slides().GetImage(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", mime)

	sl, err := s.Slides().Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "image/png", sl.ImageMime)
}

func TestManagerOverMongo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedSlideshow(t, s, "home", "hero")
	b := seedSlideshow(t, s, "home", "footer")
	ids := seedSlides(t, s, a.ID, 4)
	seedSlides(t, s, b.ID, 2)

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		_, err := ordering.NewManager(tx.Slides()).MoveTo(ctx, a.ID, ids[3], 1)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[3], ids[0], ids[1], ids[2]}, slideIDs(t, s, a.ID))

	err = s.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		order, err := ordering.NewManager(tx.Slides()).MoveToParent(ctx, ids[0], a.ID, b.ID, nil)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, order)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, slideIDs(t, s, a.ID), 3)
	assert.Len(t, slideIDs(t, s, b.ID), 3)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	show := seedSlideshow(t, s, "home", "hero")
	ids := seedSlides(t, s, show.ID, 3)

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.ContentRepos) error {
		if _, err := ordering.NewManager(tx.Slides()).MoveTo(ctx, show.ID, ids[0], 3); err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, ids, slideIDs(t, s, show.ID))
}

func TestConcurrentMovesStayDense(t *testing.T) {
	s := newTestStore(t)
	show := seedSlideshow(t, s, "home", "hero")
	ids := seedSlides(t, s, show.ID, 6)
	slides := service.NewSlideService(s)

	var wg sync.WaitGroup
	for i := range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids[i%len(ids)]
			var action service.Action = service.MoveUp{}
			if i%2 == 0 {
				action = service.SetOrder{Value: len(ids) - i%len(ids)}
			}
			_, err := slides.Apply(context.Background(), id, action)
			if err != nil {
				assert.ErrorIs(t, err, apperr.ErrBoundary)
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, ids, slideIDs(t, s, show.ID))
}

func TestAnnouncementsByPage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	svc := service.NewAnnouncementService(s)

	for _, page := range []string{"home", "events", "home"} {
		_, err := svc.Create(ctx, page, service.AnnouncementInput{Title: model.Text{En: "Notice"}}, nil)
		require.NoError(t, err)
	}

	pages, err := s.Announcements().ListPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "home"}, pages)

	home, err := svc.List(ctx, "home")
	require.NoError(t, err)
	require.Len(t, home, 2)
	assert.Equal(t, 1, home[0].Order)
	assert.Equal(t, 2, home[1].Order)

	dup, err := svc.Apply(ctx, home[0].ID, service.Duplicate{})
	require.NoError(t, err)
	assert.Equal(t, 3, dup.Order)
	assert.False(t, dup.IsActive)

	report, err := service.CheckContent(ctx, s, false)
	require.NoError(t, err)
	for _, r := range report {
		assert.False(t, r.Broken, "%s %s", r.Kind, r.Scope)
	}
}
