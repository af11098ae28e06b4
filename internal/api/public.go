package api

import (
	"net/http"
	"time"

	"github.com/erazemk/sangam/internal/service"
)

// PublicHandler serves the unauthenticated reads of the public site.
type PublicHandler struct {
	Slideshows    *service.SlideshowService
	Announcements *service.AnnouncementService
}

// Slideshow handles GET /api/public/slideshows?page=&section=.
func (h *PublicHandler) Slideshow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	show, err := h.Slideshows.Public(r.Context(), q.Get("page"), q.Get("section"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, show)
}

// VisibleAnnouncements handles GET /api/public/announcements?page=.
func (h *PublicHandler) VisibleAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := h.Announcements.Visible(r.Context(), r.URL.Query().Get("page"), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}
