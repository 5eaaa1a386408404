// Package handlers renders the bakery pages and handles their form posts.
// Every handler talks to data through the injected backend.Client.
package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/middleware"
	"SweetDelights/internal/models"
	"SweetDelights/internal/sessions"
	"SweetDelights/internal/ui"
	"SweetDelights/web"
)

const defaultMaxUpload int64 = 25 << 20 // 25 MB

var pageNames = []string{"home", "category", "login", "dashboard"}

// Options tune a Handlers. Zero values pick defaults.
type Options struct {
	MaxUploadBytes int64
	Now            func() time.Time
	// Location is where dates are shown and exported. Defaults to time.Local.
	Location *time.Location
}

// Handlers holds the dependencies shared by every page.
type Handlers struct {
	backend   *backend.Client
	sessions  *sessions.Store
	logger    *zap.Logger
	pages     map[string]*template.Template
	maxUpload int64
	now       func() time.Time
	loc       *time.Location
}

// New parses the embedded templates once.
func New(client *backend.Client, store *sessions.Store, logger *zap.Logger, opts Options) (*Handlers, error) {
	if client == nil || store == nil {
		return nil, fmt.Errorf("handlers: backend client and session store are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		backend:   client,
		sessions:  store,
		logger:    logger,
		maxUpload: opts.MaxUploadBytes,
		now:       opts.Now,
		loc:       opts.Location,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	pages, err := parsePages(web.FS, h.funcs())
	if err != nil {
		return nil, err
	}
	h.pages = pages
	return h, nil
}

// RequireAdmin guards the admin routes.
func (h *Handlers) RequireAdmin() func(http.Handler) http.Handler {
	return middleware.AdminOnly(h.backend.Auth, h.sessions, h.logger)
}

// MaxUploadBytes is the request body limit for image uploads.
func (h *Handlers) MaxUploadBytes() int64 { return h.maxUpload }

var md = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

// renderMarkdown turns a cake description into HTML. Raw HTML in the source
// is dropped by goldmark unless the unsafe option is set, which it is not.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (h *Handlers) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"date":     func(t time.Time) string { return t.In(h.loc).Format("Jan 2, 2006") },
		"clock":    func(t time.Time) string { return t.In(h.loc).Format("15:04") },
		"add":      func(a, b int) int { return a + b },
	}
}

func parsePages(fsys fs.FS, funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Единый рендер: сам прокидывает общие поля шапки и подвала во все шаблоны.
// Queued toasts are popped here, so this must run before anything is written.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any, extra ...ui.Toast) {
	t, ok := h.pages[page]
	if !ok {
		h.logger.Error("unknown page", zap.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["IsAdmin"] = h.isAdmin(r)
	data["Toasts"] = append(h.sessions.Toasts(w, r), extra...)
	data["CSRFField"] = csrf.TemplateField(r)
	data["Categories"] = models.Categories
	data["Year"] = h.now().In(h.loc).Year()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// isAdmin reports whether the request carries a live admin session. A token
// the backend no longer knows does not count.
func (h *Handlers) isAdmin(r *http.Request) bool {
	if _, ok := middleware.AdminFromContext(r.Context()); ok {
		return true
	}
	token, ok := h.sessions.Token(r)
	if !ok {
		return false
	}
	_, err := h.backend.Auth.GetSession(r.Context(), token)
	return err == nil
}

// RejectOversized answers posts whose declared body exceeds the upload limit
// before anything reads the body. Add-cake posts get the upload failure toast
// on the dashboard; anything else gets 413.
func (h *Handlers) RejectOversized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength <= h.maxUpload {
			next.ServeHTTP(w, r)
			return
		}
		h.logger.Warn("request body too large",
			zap.String("path", r.URL.Path), zap.Int64("bytes", r.ContentLength))
		if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/admin/cakes") {
			h.flash(w, r, ui.Failure("Failed to upload image"))
			http.Redirect(w, r, dashboardURL(ui.DefaultSort, ui.Open), http.StatusSeeOther)
			return
		}
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
	})
}

// flash queues a toast for the page the client is redirected to.
func (h *Handlers) flash(w http.ResponseWriter, r *http.Request, t ui.Toast) {
	if err := h.sessions.AddToast(w, r, t); err != nil {
		h.logger.Warn("queue toast", zap.Error(err))
	}
}
