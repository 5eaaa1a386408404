package server

import (
	"bytes"
	"context"
	"html"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"SweetDelights/internal/backend/backendtest"
	"SweetDelights/internal/handlers"
	"SweetDelights/internal/sessions"
)

var csrfKey = []byte("0123456789abcdef0123456789abcdef")

func newRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	r, _ := newRouterWithFake(t, opts, handlers.Options{})
	return r
}

func newRouterWithFake(t *testing.T, opts Options, hopts handlers.Options) (http.Handler, *backendtest.Fake) {
	t.Helper()
	fake := backendtest.New()
	store := sessions.New(t.TempDir(), "secret", time.Hour, false)
	h, err := handlers.New(fake.Client(), store, zap.NewNop(), hopts)
	require.NoError(t, err)
	r, err := NewRouter(h, opts)
	require.NoError(t, err)
	return r, fake
}

var tokenField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// client replays cookies and picks up the csrf token from rendered forms.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	token   string
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Referer", "http://example.com/admin/login")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	if m := tokenField.FindStringSubmatch(w.Body.String()); m != nil {
		c.token = html.UnescapeString(m[1])
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	form.Set("csrf_token", c.token)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postImage(path string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(c.t, mw.WriteField("csrf_token", c.token))
	require.NoError(c.t, mw.WriteField("name", "Opera"))
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="images"; filename="opera.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// signIn logs in through the csrf-protected form.
func signIn(t *testing.T, r http.Handler, fake *backendtest.Fake) *client {
	t.Helper()
	fake.Admins["owner@bakery.test"] = "hunter2"
	c := &client{t: t, handler: r, cookies: map[string]*http.Cookie{}}

	require.Equal(t, http.StatusOK, c.get("/admin/login").Code)
	require.NotEmpty(t, c.token)
	require.Contains(t, c.cookies, "_gorilla_csrf")

	w := c.postForm("/admin/login", url.Values{"email": {"owner@bakery.test"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	return c
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	r := newRouter(t, Options{})

	for _, path := range []string{"/nope", "/admin", "/category"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/", w.Header().Get("Location"), path)
	}
}

func TestStaticAssetsAreServed(t *testing.T) {
	r := newRouter(t, Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".toast")
}

func TestUploadsAreServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cake-images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cake-images", "a.jpg"), []byte("jpeg"), 0o644))
	r := newRouter(t, Options{UploadDir: dir, UploadURLPrefix: "/uploads"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/cake-images/a.jpg", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
}

func TestCSRFRejectsFormWithoutToken(t *testing.T) {
	r := newRouter(t, Options{CSRFKey: csrfKey})

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFFieldIsRendered(t *testing.T) {
	r := newRouter(t, Options{CSRFKey: csrfKey})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="csrf_token"`)
}

func TestCSRFAcceptsFormsWithToken(t *testing.T) {
	r, fake := newRouterWithFake(t, Options{CSRFKey: csrfKey}, handlers.Options{})
	c := signIn(t, r, fake)
	require.Len(t, fake.Sessions, 1)

	require.Equal(t, http.StatusOK, c.get("/admin/dashboard").Code)
	w := c.postImage("/admin/cakes/images", []byte("\xff\xd8\xff\xe0opera"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/admin/dashboard")
	assert.Len(t, fake.Uploads, 1)
}

func TestCSRFOversizedUploadGetsToastNotForbidden(t *testing.T) {
	r, fake := newRouterWithFake(t, Options{CSRFKey: csrfKey}, handlers.Options{MaxUploadBytes: 2048})
	c := signIn(t, r, fake)
	require.Equal(t, http.StatusOK, c.get("/admin/dashboard").Code)

	w := c.postImage("/admin/cakes/images", append([]byte("\xff\xd8\xff"), make([]byte, 8192)...))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, fake.Uploads)
	assert.Contains(t, c.get(w.Header().Get("Location")).Body.String(), "Failed to upload image")
}

func TestUploadsAreServedInert(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cake-images"), 0o755))
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cake-images", "x.svg"), []byte(svg), 0o644))
	r := newRouter(t, Options{UploadDir: dir, UploadURLPrefix: "/uploads"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/cake-images/x.svg", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "sandbox")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}), zap.NewNop())
	}()

	tr := &http.Transport{DisableKeepAlives: true}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	tr.CloseIdleConnections()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	err := Run(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), zap.NewNop())
	assert.Error(t, err)
}
