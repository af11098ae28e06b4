package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/store"
)

// BookInput is the payload of a new book.
type BookInput struct {
	Title       model.Text `json:"title"`
	Author      model.Text `json:"author"`
	Description string     `json:"description"`
	ISBN        string     `json:"isbn"`
	PricePaise  int64      `json:"price_paise"`
	Published   bool       `json:"published"`
}

// BookPatch changes a book. Nil fields are left alone.
type BookPatch struct {
	Title       *model.Text `json:"title"`
	Author      *model.Text `json:"author"`
	Description *string     `json:"description"`
	ISBN        *string     `json:"isbn"`
	PricePaise  *int64      `json:"price_paise"`
	Published   *bool       `json:"published"`
}

// BookService manages the book catalogue. Books are not ordered and are
// soft-deleted.
type BookService struct {
	db db.DBTX
}

func NewBookService(q db.DBTX) *BookService {
	return &BookService{db: q}
}

func (s *BookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := store.GetBook(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.DeletedAt != nil {
		return nil, apperr.NotFound("book %d", id)
	}
	return b, nil
}

func (s *BookService) List(ctx context.Context, publishedOnly bool) ([]model.Book, error) {
	return store.ListBooks(ctx, s.db, publishedOnly)
}

func (s *BookService) Create(ctx context.Context, in BookInput) (*model.Book, error) {
	b := &model.Book{
		Title:       in.Title.Normalize(),
		Author:      in.Author.Normalize(),
		Description: strings.TrimSpace(in.Description),
		ISBN:        normalizeISBN(in.ISBN),
		PricePaise:  in.PricePaise,
		Published:   in.Published,
	}
	if err := validateBook(b); err != nil {
		return nil, err
	}
	return store.CreateBook(ctx, s.db, b)
}

func (s *BookService) Update(ctx context.Context, id int64, patch BookPatch) (*model.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		b.Title = patch.Title.Normalize()
	}
	if patch.Author != nil {
		b.Author = patch.Author.Normalize()
	}
	if patch.Description != nil {
		b.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ISBN != nil {
		b.ISBN = normalizeISBN(*patch.ISBN)
	}
	if patch.PricePaise != nil {
		b.PricePaise = *patch.PricePaise
	}
	if patch.Published != nil {
		b.Published = *patch.Published
	}
	if err := validateBook(b); err != nil {
		return nil, err
	}
	if err := store.UpdateBook(ctx, s.db, b); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	return store.DeleteBook(ctx, s.db, id)
}

// SetCover stores an already processed cover image.
func (s *BookService) SetCover(ctx context.Context, id int64, data []byte, mime string) error {
	return store.SetBookCover(ctx, s.db, id, data, mime)
}

func (s *BookService) Cover(ctx context.Context, id int64) ([]byte, string, error) {
	data, mime, err := store.GetBookCover(ctx, s.db, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", apperr.NotFound("cover of book %d", id)
	}
	return data, mime, nil
}

// normalizeISBN drops spaces and hyphens and upper-cases the check digit X.
func normalizeISBN(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(s)
}

func validateBook(b *model.Book) error {
	if b.Title.IsEmpty() {
		return apperr.Validation("title requires English or Tamil text")
	}
	if b.PricePaise < 0 {
		return apperr.Validation("price must not be negative")
	}
	if b.ISBN != "" {
		if n := len(b.ISBN); n != 10 && n != 13 {
			return apperr.Validation("isbn must have 10 or 13 digits")
		}
		digits := strings.TrimSuffix(b.ISBN, "X")
		if _, err := strconv.ParseUint(digits, 10, 64); err != nil {
			return apperr.Validation("isbn %q is not numeric", b.ISBN)
		}
	}
	return nil
}
