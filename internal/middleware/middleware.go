package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
	"SweetDelights/internal/sessions"
)

type ctxKey struct{}

// AdminFromContext returns the session AdminOnly resolved for this request.
func AdminFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(models.Session)
	return s, ok
}

// AdminOnly пропускает дальше только запросы с живой сессией администратора.
// Иначе редирект на страницу входа, до того как обработчик что-то запросит.
// Позволяет писать: g.Use(middleware.AdminOnly(auth, store, logger))
func AdminOnly(auth backend.Auth, store *sessions.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := store.Token(r)
			if !ok {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}
			session, err := auth.GetSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, backend.ErrNoSession) {
					logger.Error("session lookup failed", zap.Error(err))
				}
				_ = store.Clear(w, r)
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
