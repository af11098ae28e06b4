package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/service"
)

// SlideshowsHandler handles slideshow endpoints.
type SlideshowsHandler struct {
	Slideshows *service.SlideshowService
	Slides     *service.SlideService
}

// List handles GET /api/slideshows.
func (h *SlideshowsHandler) List(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Slideshows.List(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if shows == nil {
		shows = []model.Slideshow{}
	}
	jsonResponse(w, http.StatusOK, shows)
}

// Create handles POST /api/slideshows.
func (h *SlideshowsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SlideshowInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	show, err := h.Slideshows.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slideshow created", "user", username(r), "slideshow", show.ID, "page", show.Page, "section", show.Section)
	jsonResponse(w, http.StatusCreated, show)
}

// Get handles GET /api/slideshows/{id}.
func (h *SlideshowsHandler) Get(w http.ResponseWriter, r *http.Request) {
	show, err := h.Slideshows.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, show)
}

// ListSlides handles GET /api/slideshows/{id}/slides.
func (h *SlideshowsHandler) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.Slides.List(r.Context(), r.PathValue("id"), r.URL.Query().Get("active") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if slides == nil {
		slides = []model.Slide{}
	}
	jsonResponse(w, http.StatusOK, slides)
}

// Update handles PUT /api/slideshows/{id}.
func (h *SlideshowsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SlideshowPatch
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	show, err := h.Slideshows.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slideshow updated", "user", username(r), "slideshow", show.ID)
	jsonResponse(w, http.StatusOK, show)
}

// Delete handles DELETE /api/slideshows/{id}.
func (h *SlideshowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Slideshows.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slideshow deleted", "user", username(r), "slideshow", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "slideshow deleted"})
}
