package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cookfeed/internal/config"
	"cookfeed/internal/database"
	"cookfeed/internal/garden"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:            "0",
		Env:             "test",
		SecretKey:       "test-secret-key-for-cookie-encryption",
		BcryptCost:      bcrypt.MinCost,
		MaxUploadMB:     4,
		StaticDir:       t.TempDir(),
		UploadDir:       t.TempDir(),
		SessionTTLHours: 1,
		ChatMaxTokens:   100,
		ChatTimeoutSecs: 5,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	_, err = database.EnsureSchema(context.Background(), db)
	require.NoError(t, err)
	return db
}

// newTestServer builds a server on SQLite with local uploads and no chat
// credential. mutate may adjust config and deps before the server is built.
func newTestServer(t *testing.T, mutate func(*config.Config, *Deps)) *Server {
	t.Helper()
	cfg := testConfig(t)
	catalog, _, err := garden.Load("")
	require.NoError(t, err)

	deps := Deps{DB: newTestDB(t), Catalog: catalog}
	uploader, err := NewUploader(cfg)
	require.NoError(t, err)
	deps.Uploader = uploader

	if mutate != nil {
		mutate(cfg, &deps)
	}

	s, err := NewServerWithDeps(cfg, deps)
	require.NoError(t, err)
	return s
}

// fakeCompleter answers every chat with reply or err.
type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, _ int) (string, error) {
	f.calls++
	return f.reply, f.err
}

// browser sends requests through app.Test and carries cookies between them.
type browser struct {
	t       *testing.T
	s       *Server
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, s *Server) *browser {
	return &browser{t: t, s: s, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	resp, err := b.s.App().Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) json(method, path string, body any) *http.Response {
	b.t.Helper()
	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(b.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return b.do(req)
}

func (b *browser) form(path string, values url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// multipart posts fields and an optional file under "image".
func (b *browser) multipart(path string, fields map[string]string, filename string, file []byte) *http.Response {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(b.t, err)
		_, err = fw.Write(file)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) register(username, email, password string) *http.Response {
	return b.json(http.MethodPost, "/register", map[string]string{
		"username": username, "email": email, "password": password,
	})
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}
