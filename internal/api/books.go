package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sangam/internal/imaging"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/service"
)

// BooksHandler handles book catalogue endpoints.
type BooksHandler struct {
	Books *service.BookService
}

// List handles GET /api/books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Books.List(r.Context(), r.URL.Query().Get("published") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.BookInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.Books.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("book created", "user", username(r), "book", book.ID)
	jsonResponse(w, http.StatusCreated, book)
}

// Get handles GET /api/books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.Books.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{id}.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req service.BookPatch
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.Books.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("book updated", "user", username(r), "book", id)
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := h.Books.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("book deleted", "user", username(r), "book", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	img, err := readImageUpload(w, r, imaging.CoverMaxDimension)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Books.SetCover(r.Context(), id, img.Data, img.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("book cover uploaded", "user", username(r), "book", id)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "cover uploaded",
		"width":   img.Width,
		"height":  img.Height,
	})
}

// GetCover handles GET /api/books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := h.Books.Cover(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveImage(w, data, mime)
}
