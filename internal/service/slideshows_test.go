package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
)

func TestCreateSlideshowDefaults(t *testing.T) {
	env := newTestEnv(t)

	s, err := env.slideshows.Create(context.Background(), SlideshowInput{
		Page:       "Home",
		Section:    "hero",
		IntervalMS: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "home", s.Page)
	assert.Equal(t, model.MinDurationMS, s.IntervalMS)
	assert.True(t, s.Autoplay)
	assert.True(t, s.IsActive)
}

func TestSlideshowPlacementIsUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.slideshow(t, "home", "hero")
	other := env.slideshow(t, "home", "events")

	_, err := env.slideshows.Create(ctx, SlideshowInput{Page: "home", Section: "hero"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = env.slideshows.Update(ctx, other.ID, SlideshowPatch{Section: ptr("hero")})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = env.slideshows.Create(ctx, SlideshowInput{Page: "home"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteSlideshowRemovesSlides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	show := env.slideshow(t, "home", "hero")
	ids := env.addSlides(t, show.ID, 2)

	require.NoError(t, env.slideshows.Delete(ctx, show.ID))
	_, err := env.slides.Get(ctx, ids[0])
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, env.slideshows.Delete(ctx, show.ID), apperr.ErrNotFound)
}

func TestPublicSlideshow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	show := env.slideshow(t, "home", "hero")
	ids := env.addSlides(t, show.ID, 3)
	_, err := env.slides.Apply(ctx, ids[1], ToggleActive{})
	require.NoError(t, err)

	pub, err := env.slideshows.Public(ctx, "home", "hero")
	require.NoError(t, err)
	require.Len(t, pub.Slides, 2)
	assert.Equal(t, ids[0], pub.Slides[0].ID)
	assert.Equal(t, ids[2], pub.Slides[1].ID)
	assert.Equal(t, 3, pub.SlideCount)

	_, err = env.slideshows.Update(ctx, show.ID, SlideshowPatch{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = env.slideshows.Public(ctx, "home", "hero")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.slideshows.Public(ctx, "home", "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
