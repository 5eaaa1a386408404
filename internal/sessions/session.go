package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"SweetDelights/internal/ui"
)

const (
	sessionName = "admin_session"

	tokenKey = "access_token"
	draftKey = "cake_draft"
)

func init() {
	gob.Register(ui.Toast{})
	gob.Register(ui.CakeDraft{})
}

// Store keeps the admin access token, one-shot toasts and the cake form
// draft server-side in dir; the browser only holds a signed, encrypted
// session id cookie.
type Store struct {
	cookies *sessions.FilesystemStore
	dir     string
	maxAge  time.Duration
}

// New derives the cookie keys from secret. An empty dir means os.TempDir.
func New(dir, secret string, maxAge time.Duration, secure bool) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	// Делаем 2 ключа: подпись + шифрование (устойчивее, чем только подпись).
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	store := sessions.NewFilesystemStore(dir, h[:], e[:])
	// Черновик торта с описанием не влезает в 4 КБ.
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode, // кука по GET тоже отправится
		Secure:   secure,
	}
	store.MaxAge(store.Options.MaxAge)
	return &Store{cookies: store, dir: dir, maxAge: maxAge}
}

// GetSession returns the cookie session. A cookie that fails to decode
// yields a fresh session and the decode error.
func (s *Store) GetSession(r *http.Request) (*sessions.Session, error) {
	return s.cookies.Get(r, sessionName)
}

// SetToken remembers the backend session token.
func (s *Store) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := s.GetSession(r)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Token returns the stored backend session token.
func (s *Store) Token(r *http.Request) (string, bool) {
	sess, err := s.GetSession(r)
	if err != nil {
		return "", false
	}
	v, ok := sess.Values[tokenKey].(string)
	return v, ok && v != ""
}

// Clear destroys the session: its file is removed and the cookie expired.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.GetSession(r)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// AddToast queues a toast for the next rendered page.
func (s *Store) AddToast(w http.ResponseWriter, r *http.Request, t ui.Toast) error {
	sess, _ := s.GetSession(r)
	sess.AddFlash(t)
	return sess.Save(r, w)
}

// Toasts pops every queued toast. It writes the cookie, so call it before
// the response body.
func (s *Store) Toasts(w http.ResponseWriter, r *http.Request) []ui.Toast {
	sess, err := s.GetSession(r)
	if err != nil {
		return nil
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	toasts := make([]ui.Toast, 0, len(flashes))
	for _, f := range flashes {
		if t, ok := f.(ui.Toast); ok {
			toasts = append(toasts, t)
		}
	}
	return toasts
}

// Draft returns the add-cake form in progress, or an empty one.
func (s *Store) Draft(r *http.Request) ui.CakeDraft {
	sess, err := s.GetSession(r)
	if err != nil {
		return ui.NewCakeDraft()
	}
	if d, ok := sess.Values[draftKey].(ui.CakeDraft); ok {
		return d
	}
	return ui.NewCakeDraft()
}

// SaveDraft stores the add-cake form in progress.
func (s *Store) SaveDraft(w http.ResponseWriter, r *http.Request, d ui.CakeDraft) error {
	sess, _ := s.GetSession(r)
	sess.Values[draftKey] = d
	return sess.Save(r, w)
}

// ClearDraft drops the add-cake form in progress.
func (s *Store) ClearDraft(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.GetSession(r)
	delete(sess.Values, draftKey)
	return sess.Save(r, w)
}

// filePrefix is how gorilla's FilesystemStore names session files.
const filePrefix = "session_"

// Sweep removes session files not written for longer than the session
// lifetime and returns how many it removed.
func (s *Store) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove session file: %w", err)
		}
		removed++
	}
	return removed, nil
}

// RunSweeper sweeps once immediately and then every interval until ctx ends.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := s.Sweep(time.Now())
		if err != nil {
			logger.Warn("sweep sessions", zap.Error(err))
		} else if n > 0 {
			logger.Info("expired sessions removed", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
