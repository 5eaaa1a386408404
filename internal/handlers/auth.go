package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/ui"
)

// ShowLoginPage отображает страницу входа администратора
func (h *Handlers) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Admin Login",
	})
}

// HandleLogin обрабатывает POST-запрос входа администратора
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginFailed(w, r, "Invalid login credentials")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.loginFailed(w, r, "Invalid login credentials")
		return
	}

	session, err := h.backend.Auth.SignIn(r.Context(), email, password)
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		h.loginFailed(w, r, "Invalid login credentials")
		return
	case err != nil:
		h.logger.Error("sign in", zap.Error(err))
		h.loginFailed(w, r, "Login failed. Please try again.")
		return
	}

	if err := h.sessions.SetToken(w, r, session.Token); err != nil {
		h.logger.Error("session save", zap.Error(err))
		h.loginFailed(w, r, "Login failed. Please try again.")
		return
	}
	h.logger.Info("admin signed in", zap.String("email", session.Email))
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *Handlers) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	h.flash(w, r, ui.Failure(msg))
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// HandleLogout удаляет сессию и возвращает на логин
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.sessions.Token(r); ok {
		if err := h.backend.Auth.SignOut(r.Context(), token); err != nil {
			h.logger.Warn("sign out", zap.Error(err))
		}
	}
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
