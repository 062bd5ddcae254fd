package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/weifish0/file-upload-sys/internal/auth"
	"github.com/weifish0/file-upload-sys/internal/handler"
	"github.com/weifish0/file-upload-sys/internal/middleware"
)

const loginAttemptsPerMinute = 10

// New wires every route. The body-size cap runs before any handler logic;
// admin routes sit behind the session gate.
func New(
	sessions *auth.SessionManager,
	publicH *handler.PublicHandler,
	adminH *handler.AdminHandler,
	maxBodyBytes int64,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery(adminH.ServerError))
	r.Use(middleware.MaxBytes(maxBodyBytes))

	r.Get("/", publicH.Index)
	r.Post("/submit", publicH.Submit)

	r.Get("/admin/login", adminH.LoginForm)
	r.With(httprate.LimitByIP(loginAttemptsPerMinute, time.Minute)).
		Post("/admin/login", adminH.Login)

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAdmin)
		r.Get("/admin/logout", adminH.Logout)
		r.Get("/admin/dashboard", adminH.Dashboard)
		r.Post("/admin/delete/{id}", adminH.Delete)
		r.Get("/admin/export", adminH.ExportCSV)
		r.Get("/admin/download/{id}", adminH.Download)
		r.Get("/admin/download-all", adminH.DownloadAll)
	})

	r.NotFound(adminH.NotFound)

	return r
}
