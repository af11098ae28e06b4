package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/sangam/internal/auth"
	"github.com/erazemk/sangam/internal/model"
	"github.com/erazemk/sangam/internal/service"
	"github.com/erazemk/sangam/internal/store"
)

// NewRouter creates the API router with all endpoints registered. Accounts
// and books live in db; slideshows, slides and announcements in content.
func NewRouter(db *sql.DB, content store.ContentStore, issuer *auth.Issuer) http.Handler {
	mux := http.NewServeMux()

	slideshowSvc := service.NewSlideshowService(content)
	slideSvc := service.NewSlideService(content)
	announcementSvc := service.NewAnnouncementService(content)

	authHandler := &AuthHandler{DB: db, Issuer: issuer}
	usersHandler := &UsersHandler{DB: db}
	slideshowsHandler := &SlideshowsHandler{Slideshows: slideshowSvc, Slides: slideSvc}
	slidesHandler := &SlidesHandler{Slides: slideSvc}
	announcementsHandler := &AnnouncementsHandler{Announcements: announcementSvc}
	booksHandler := &BooksHandler{Books: service.NewBookService(db)}
	publicHandler := &PublicHandler{Slideshows: slideshowSvc, Announcements: announcementSvc}

	authMW := AuthMiddleware(issuer, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireEditor := RequireRole(model.RoleEditor)

	// read needs any role, write needs editor or above.
	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireEditor(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login and the site's reads.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/public/slideshows", publicHandler.Slideshow)
	mux.HandleFunc("GET /api/public/announcements", publicHandler.VisibleAnnouncements)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Slideshows.
	mux.Handle("GET /api/slideshows", read(slideshowsHandler.List))
	mux.Handle("POST /api/slideshows", write(slideshowsHandler.Create))
	mux.Handle("GET /api/slideshows/{id}", read(slideshowsHandler.Get))
	mux.Handle("GET /api/slideshows/{id}/slides", read(slideshowsHandler.ListSlides))
	mux.Handle("PUT /api/slideshows/{id}", write(slideshowsHandler.Update))
	mux.Handle("DELETE /api/slideshows/{id}", write(slideshowsHandler.Delete))

	// Slides.
	mux.Handle("GET /api/slides", read(slidesHandler.List))
	mux.Handle("POST /api/slides", write(slidesHandler.Create))
	mux.Handle("GET /api/slides/{id}", read(slidesHandler.Get))
	mux.Handle("PUT /api/slides/{id}", write(slidesHandler.Update))
	mux.Handle("PATCH /api/slides/{id}", write(slidesHandler.Action))
	mux.Handle("DELETE /api/slides/{id}", write(slidesHandler.Delete))
	mux.Handle("GET /api/slides/{id}/moves", read(slidesHandler.Moves))
	mux.Handle("PUT /api/slides/{id}/image", write(slidesHandler.UploadImage))
	mux.Handle("GET /api/slides/{id}/image", read(slidesHandler.GetImage))

	// Announcements.
	mux.Handle("GET /api/announcements", read(announcementsHandler.List))
	mux.Handle("POST /api/announcements", write(announcementsHandler.Create))
	mux.Handle("GET /api/announcements/{id}", read(announcementsHandler.Get))
	mux.Handle("PUT /api/announcements/{id}", write(announcementsHandler.Update))
	mux.Handle("PATCH /api/announcements/{id}", write(announcementsHandler.Action))
	mux.Handle("DELETE /api/announcements/{id}", write(announcementsHandler.Delete))

	// Books.
	mux.Handle("GET /api/books", read(booksHandler.List))
	mux.Handle("POST /api/books", write(booksHandler.Create))
	mux.Handle("GET /api/books/{id}", read(booksHandler.Get))
	mux.Handle("PUT /api/books/{id}", write(booksHandler.Update))
	mux.Handle("DELETE /api/books/{id}", write(booksHandler.Delete))
	mux.Handle("PUT /api/books/{id}/cover", write(booksHandler.UploadCover))
	mux.Handle("GET /api/books/{id}/cover", read(booksHandler.GetCover))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "no such endpoint")
	})

	return mux
}
