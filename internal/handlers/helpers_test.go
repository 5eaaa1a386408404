package handlers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"SweetDelights/internal/backend/backendtest"
	"SweetDelights/internal/handlers"
	"SweetDelights/internal/server"
	"SweetDelights/internal/sessions"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

// browser keeps cookies between requests to the router.
type browser struct {
	t       *testing.T
	fake    *backendtest.Fake
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T) *browser {
	t.Helper()
	return newBrowserWith(t, handlers.Options{})
}

// newBrowserWith fills in the fixed clock and UTC unless opts sets them.
func newBrowserWith(t *testing.T, opts handlers.Options) *browser {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	fake := backendtest.New()
	store := sessions.New(t.TempDir(), "test-secret", time.Hour, false)
	h, err := handlers.New(fake.Client(), store, zap.NewNop(), opts)
	require.NoError(t, err)
	r, err := server.NewRouter(h, server.Options{})
	require.NoError(t, err)
	return &browser{t: t, fake: fake, handler: r, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

type upload struct {
	name string
	data []byte
	ct   string
}

func (b *browser) postMultipart(path string, fields url.Values, files ...upload) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(b.t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.name))
		hdr.Set("Content-Type", f.ct)
		part, err := mw.CreatePart(hdr)
		require.NoError(b.t, err)
		_, err = io.Copy(part, bytes.NewReader(f.data))
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

// login signs in through the login form.
func (b *browser) login() {
	b.t.Helper()
	b.fake.Admins["owner@bakery.test"] = "hunter2"
	w := b.postForm("/admin/login", url.Values{"email": {"owner@bakery.test"}, "password": {"hunter2"}})
	require.Equal(b.t, http.StatusSeeOther, w.Code)
	require.Equal(b.t, "/admin/dashboard", w.Header().Get("Location"))
}

func jpeg(name string) upload {
	return upload{name: name, data: []byte("\xff\xd8\xff" + name), ct: "image/jpeg"}
}
