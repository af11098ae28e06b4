package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/model"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"978-81-234-5678-9", "9788123456789"},
		{" 81 7201 x", "817201X"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeISBN(tt.in); got != tt.want {
			t.Errorf("normalizeISBN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateBookValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   BookInput
	}{
		{"no title", BookInput{Author: model.Text{En: "Bharathi"}}},
		{"negative price", BookInput{Title: model.Text{En: "Kavithaigal"}, PricePaise: -1}},
		{"short isbn", BookInput{Title: model.Text{En: "Kavithaigal"}, ISBN: "12345"}},
		{"letters in isbn", BookInput{Title: model.Text{En: "Kavithaigal"}, ISBN: "97881ABCDEFGH"}},
	}
	for _, tt := range tests {
		_, err := env.books.Create(ctx, tt.in)
		require.ErrorIs(t, err, apperr.ErrValidation, tt.name)
	}
}

func TestBookLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.books.Create(ctx, BookInput{
		Title:      model.Text{En: "Kavithaigal", Ta: "கவிதைகள்"},
		ISBN:       "978-81-234-5678-9",
		PricePaise: 15000,
	})
	require.NoError(t, err)
	assert.Equal(t, "9788123456789", b.ISBN)

	updated, err := env.books.Update(ctx, b.ID, BookPatch{Published: ptr(true), PricePaise: ptr(int64(18000))})
	require.NoError(t, err)
	assert.True(t, updated.Published)
	assert.Equal(t, int64(18000), updated.PricePaise)
	assert.Equal(t, "Kavithaigal", updated.Title.En)

	_, err = env.books.Create(ctx, BookInput{Title: model.Text{En: "Copy"}, ISBN: "9788123456789"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, _, err = env.books.Cover(ctx, b.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, env.books.Delete(ctx, b.ID))
	_, err = env.books.Get(ctx, b.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.books.Update(ctx, b.ID, BookPatch{Published: ptr(false)})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
