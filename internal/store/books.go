package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/db"
	"github.com/erazemk/sangam/internal/model"
)

const bookColumns = `id, title_en, title_ta, author_en, author_ta, description, isbn,
	price_paise, published, cover_mime, created_at, updated_at, deleted_at`

func scanBook(row rowScanner) (*model.Book, error) {
	b := &model.Book{}
	var coverMime sql.NullString
	err := row.Scan(&b.ID, &b.Title.En, &b.Title.Ta, &b.Author.En, &b.Author.Ta, &b.Description, &b.ISBN,
		&b.PricePaise, &b.Published, &coverMime, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	b.CoverMime = coverMime.String
	return b, err
}

// CreateBook creates a new book.
func CreateBook(ctx context.Context, q db.DBTX, b *model.Book) (*model.Book, error) {
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`INSERT INTO books (title_en, title_ta, author_en, author_ta, description, isbn,
		                    price_paise, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Title.En, b.Title.Ta, b.Author.En, b.Author.Ta, b.Description, b.ISBN,
		b.PricePaise, b.Published, now, now,
	)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("book with ISBN %s already exists", b.ISBN)
	}
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, q, id)
}

// GetBook returns a book by ID, including soft-deleted ones.
func GetBook(ctx context.Context, q db.DBTX, id int64) (*model.Book, error) {
	b, err := scanBook(q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return b, nil
}

// ListBooks returns all non-deleted books by English title, optionally only
// published ones.
func ListBooks(ctx context.Context, q db.DBTX, publishedOnly bool) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE deleted_at IS NULL`
	if publishedOnly {
		query += ` AND published = 1`
	}
	query += ` ORDER BY title_en, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// UpdateBook updates a book's metadata.
func UpdateBook(ctx context.Context, q db.DBTX, b *model.Book) error {
	res, err := q.ExecContext(ctx,
		`UPDATE books SET title_en = ?, title_ta = ?, author_en = ?, author_ta = ?, description = ?,
		        isbn = ?, price_paise = ?, published = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		b.Title.En, b.Title.Ta, b.Author.En, b.Author.Ta, b.Description,
		b.ISBN, b.PricePaise, b.Published, time.Now().UTC(), b.ID,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("book with ISBN %s already exists", b.ISBN)
	}
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return checkAffected(res, "book", fmt.Sprint(b.ID))
}

// DeleteBook soft-deletes a book.
func DeleteBook(ctx context.Context, q db.DBTX, id int64) error {
	res, err := q.ExecContext(ctx,
		`UPDATE books SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return checkAffected(res, "book", fmt.Sprint(id))
}

// SetBookCover sets a book's cover image.
func SetBookCover(ctx context.Context, q db.DBTX, id int64, image []byte, mime string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	return checkAffected(res, "book", fmt.Sprint(id))
}

// GetBookCover returns a book's cover image and MIME type.
func GetBookCover(ctx context.Context, q db.DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return image, mime.String, nil
}
