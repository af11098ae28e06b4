package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/service"
)

// AnnouncementsHandler handles announcement endpoints.
type AnnouncementsHandler struct {
	Announcements *service.AnnouncementService
}

type createAnnouncementRequest struct {
	Page  string `json:"page"`
	Order *int   `json:"order"`
	service.AnnouncementInput
}

// List handles GET /api/announcements?page=.
func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Announcements.List(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Announcement{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Create handles POST /api/announcements.
func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Announcements.Create(r.Context(), req.Page, req.AnnouncementInput, req.Order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("announcement created", "user", username(r), "announcement", a.ID, "page", a.Page, "order", a.Order)
	jsonResponse(w, http.StatusCreated, a)
}

// Get handles GET /api/announcements/{id}.
func (h *AnnouncementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Announcements.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}

// Update handles PUT /api/announcements/{id}.
func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.AnnouncementPatch
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Announcements.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("announcement updated", "user", username(r), "announcement", a.ID, "page", a.Page, "order", a.Order)
	jsonResponse(w, http.StatusOK, a)
}

// Action handles PATCH /api/announcements/{id}.
func (h *AnnouncementsHandler) Action(w http.ResponseWriter, r *http.Request) {
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
	a, err := h.Announcements.Apply(r.Context(), id, action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("announcement action applied", "user", username(r), "announcement", id, "action", service.ActionName(action), "order", a.Order)
	status := http.StatusOK
	if _, ok := action.(service.Duplicate); ok {
		status = http.StatusCreated
	}
	jsonResponse(w, status, a)
}

// Delete handles DELETE /api/announcements/{id}.
func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Announcements.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("announcement deleted", "user", username(r), "announcement", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
}
