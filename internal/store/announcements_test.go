package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/apperr"
)

func TestAnnouncementWindowRoundTrip(t *testing.T) {
	c := newTestContent(t)
	ctx := context.Background()

	ids := seedAnnouncements(t, c, "home", 1)
	a, err := c.Announcements().Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, a.StartsAt)
	assert.Nil(t, a.EndsAt)

	start := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)
	a.StartsAt = &start
	a.EndsAt = &end
	a.UpdatedAt = time.Now().UTC()
	require.NoError(t, c.Announcements().Update(ctx, a))

	got, err := c.Announcements().Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StartsAt)
	require.NotNil(t, got.EndsAt)
	assert.True(t, start.Equal(*got.StartsAt))
	assert.True(t, end.Equal(*got.EndsAt))
}

func TestAnnouncementListAndPages(t *testing.T) {
	c := newTestContent(t)
	ctx := context.Background()

	seedAnnouncements(t, c, "home", 2)
	seedAnnouncements(t, c, "books", 1)

	home, err := c.Announcements().List(ctx, "home", false)
	require.NoError(t, err)
	require.Len(t, home, 2)
	assert.Equal(t, 1, home[0].Order)
	assert.Equal(t, 2, home[1].Order)

	all, err := c.Announcements().List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pages, err := c.Announcements().ListPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "home"}, pages)
}

func TestAnnouncementScopeIsPage(t *testing.T) {
	c := newTestContent(t)
	ctx := context.Background()

	ok, err := c.Announcements().ScopeExists(ctx, "never-used")
	require.NoError(t, err)
	assert.True(t, ok, "any page key is a valid scope")

	ok, err = c.Announcements().ScopeExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, c.Announcements().Delete(ctx, "nope"), apperr.ErrNotFound)
}
