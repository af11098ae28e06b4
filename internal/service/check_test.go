package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/model"
)

func TestCheckContentFindsAndRepairsGaps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	good := env.slideshow(t, "home", "hero")
	bad := env.slideshow(t, "home", "events")
	env.addSlides(t, good.ID, 2)
	badIDs := env.addSlides(t, bad.ID, 3)
	_, err := env.announcements.Create(ctx, "home", AnnouncementInput{Title: model.Text{En: "x"}}, nil)
	require.NoError(t, err)

	// Simulate a row edited outside the service.
	_, err = env.db.ExecContext(ctx, `UPDATE slides SET sort_order = 7 WHERE id = ?`, badIDs[2])
	require.NoError(t, err)

	reports, err := CheckContent(ctx, env.content, false)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	broken := 0
	for _, r := range reports {
		if r.Broken {
			broken++
			assert.Equal(t, bad.ID, r.Scope)
			assert.Equal(t, 3, r.Items)
			assert.Zero(t, r.Repaired)
		}
	}
	assert.Equal(t, 1, broken)

	reports, err = CheckContent(ctx, env.content, true)
	require.NoError(t, err)
	for _, r := range reports {
		if r.Broken {
			assert.Equal(t, 1, r.Repaired)
		}
	}
	assert.Equal(t, badIDs, env.slideIDs(t, bad.ID))

	reports, err = CheckContent(ctx, env.content, false)
	require.NoError(t, err)
	for _, r := range reports {
		assert.False(t, r.Broken, "%s %s", r.Kind, r.Scope)
	}
}
