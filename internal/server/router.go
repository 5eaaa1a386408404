// Package server wires the bakery routes and runs the HTTP server.
package server

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"SweetDelights/internal/handlers"
	mw "SweetDelights/internal/middleware"
	"SweetDelights/web"
)

// Options configure NewRouter.
type Options struct {
	Logger *zap.Logger
	// UploadDir is served read-only under UploadURLPrefix.
	UploadDir       string
	UploadURLPrefix string
	// CSRFKey enables CSRF protection on every form when set (32 bytes).
	CSRFKey []byte
	// Secure marks cookies Secure and keeps the CSRF Referer check on.
	Secure bool
}

// NewRouter builds the full route table.
func NewRouter(h *handlers.Handlers, opts Options) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// базовые middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RedirectSlashes) // /path/ -> /path
	r.Use(h.RejectOversized)          // до csrf, иначе вместо тоста будет 403
	r.Use(middleware.RequestSize(h.MaxUploadBytes()))
	if len(opts.CSRFKey) > 0 {
		if !opts.Secure {
			r.Use(plaintextHTTP)
		}
		r.Use(csrf.Protect(opts.CSRFKey,
			csrf.Secure(opts.Secure),
			csrf.Path("/"),
			csrf.FieldName("csrf_token"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("csrf rejected", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
				http.Error(w, "Forbidden", http.StatusForbidden)
			})),
		))
	}

	// статика
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if opts.UploadDir != "" {
		prefix := "/" + strings.Trim(opts.UploadURLPrefix, "/")
		if prefix == "/" {
			prefix = "/uploads"
		}
		r.With(inertUploads).Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	// ---------- Публичные страницы ----------
	r.Get("/", h.ShowHomePage)
	r.Get("/category/{category}", h.ShowCategoryPage)
	r.Post("/category/{category}/enquiries", h.SubmitEnquiry)

	// ---------- Аутентификация администратора ----------
	r.Get("/admin/login", h.ShowLoginPage)
	r.Post("/admin/login", h.HandleLogin)
	r.Post("/admin/logout", h.HandleLogout)

	// ---------- Админ-панель ----------
	r.Group(func(g chi.Router) {
		g.Use(h.RequireAdmin()) // доступ только с валидной сессией

		g.Get("/admin/dashboard", h.ShowDashboard)
		g.Get("/admin/dashboard/export", h.ExportEnquiries)
		g.Post("/admin/cakes", h.CreateCake)
		g.Post("/admin/cakes/images", h.UploadCakeImages)
		g.Post("/admin/cakes/images/remove", h.RemoveCakeImage)
	})

	// всё остальное: на главную
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r, nil
}

// plaintextHTTP tells gorilla/csrf the request came over plain HTTP so the
// Referer check for TLS requests is skipped during local development.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// inertUploads keeps the browser from sniffing or running anything served
// out of the upload directory.
func inertUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		next.ServeHTTP(w, r)
	})
}
