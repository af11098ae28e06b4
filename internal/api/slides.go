package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sangam/internal/imaging"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/service"
)

// SlidesHandler handles slide endpoints.
type SlidesHandler struct {
	Slides *service.SlideService
}

type createSlideRequest struct {
	SlideshowID string `json:"slideshow_id"`
	Order       *int   `json:"order"`
	service.SlideInput
}

type actionRequest struct {
	Action string `json:"action"`
	Value  *int   `json:"value"`
}

// List handles GET /api/slides?slideshow_id=.
func (h *SlidesHandler) List(w http.ResponseWriter, r *http.Request) {
	slideshowID := r.URL.Query().Get("slideshow_id")
	if slideshowID == "" {
		jsonError(w, http.StatusBadRequest, "slideshow_id required")
		return
	}

	slides, err := h.Slides.List(r.Context(), slideshowID, r.URL.Query().Get("active") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if slides == nil {
		slides = []model.Slide{}
	}
	jsonResponse(w, http.StatusOK, slides)
}

// Create handles POST /api/slides.
func (h *SlidesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSlideRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SlideshowID == "" {
		jsonError(w, http.StatusBadRequest, "slideshow_id required")
		return
	}

	slide, err := h.Slides.Create(r.Context(), req.SlideshowID, req.SlideInput, req.Order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slide created", "user", username(r), "slide", slide.ID, "slideshow", slide.SlideshowID, "order", slide.Order)
	jsonResponse(w, http.StatusCreated, slide)
}

// Get handles GET /api/slides/{id}.
func (h *SlidesHandler) Get(w http.ResponseWriter, r *http.Request) {
	slide, err := h.Slides.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, slide)
}

// Update handles PUT /api/slides/{id}.
func (h *SlidesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SlidePatch
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slide, err := h.Slides.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slide updated", "user", username(r), "slide", slide.ID, "slideshow", slide.SlideshowID, "order", slide.Order)
	jsonResponse(w, http.StatusOK, slide)
}

// Action handles PATCH /api/slides/{id}.
func (h *SlidesHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := service.ParseAction(req.Action, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	slide, err := h.Slides.Apply(r.Context(), id, action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slide action applied", "user", username(r), "slide", id, "action", service.ActionName(action), "order", slide.Order)
	status := http.StatusOK
	if _, ok := action.(service.Duplicate); ok {
		status = http.StatusCreated
	}
	jsonResponse(w, status, slide)
}

// Delete handles DELETE /api/slides/{id}.
func (h *SlidesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Slides.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slide deleted", "user", username(r), "slide", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "slide deleted"})
}

// Moves handles GET /api/slides/{id}/moves.
func (h *SlidesHandler) Moves(w http.ResponseWriter, r *http.Request) {
	moves, err := h.Slides.Moves(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if moves == nil {
		moves = []model.SlideMove{}
	}
	jsonResponse(w, http.StatusOK, moves)
}

// UploadImage handles PUT /api/slides/{id}/image.
func (h *SlidesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	img, err := readImageUpload(w, r, imaging.SlideMaxDimension)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Slides.SetImage(r.Context(), id, img.Data, img.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("slide image uploaded", "user", username(r), "slide", id, "width", img.Width, "height", img.Height)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   img.Width,
		"height":  img.Height,
	})
}

// GetImage handles GET /api/slides/{id}/image.
func (h *SlidesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.Slides.Image(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveImage(w, data, mime)
}

