package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/web"
)

type stack struct {
	router   chi.Router
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

func newStack(t *testing.T) *stack {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	catalog, err := i18n.Load(web.Locales, "bg")
	require.NoError(t, err)

	s := &stack{
		sessions: shared.NewSessionManager(client, "sid", "session-secret", time.Hour, false),
		csrf:     shared.NewCSRFManager("csrf-secret"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		Config:         &Config{AppEnv: "development"},
		SessionManager: s.sessions,
		CSRFManager:    s.csrf,
		Catalog:        catalog,
	}) {
		r.Use(mw)
	}
	r.Get("/token", func(w http.ResponseWriter, r *http.Request) {
		token, err := s.csrf.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		require.NoError(t, err)
		_, _ = io.WriteString(w, token)
	})
	r.Get("/locale", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, shared.LocaleFromContext(r.Context()))
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router = r
	return s
}

// session issues a token and returns the cookies and token of a fresh session.
func (s *stack) session(t *testing.T) ([]*http.Cookie, string) {
	t.Helper()
	res := httptest.NewRecorder()
	s.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, res.Code)
	return res.Result().Cookies(), res.Body.String()
}

func post(cookies []*http.Cookie, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	s := newStack(t)
	cookies, _ := s.session(t)

	res := httptest.NewRecorder()
	s.router.ServeHTTP(res, post(cookies, url.Values{}))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	s.router.ServeHTTP(res, post(cookies, url.Values{shared.CSRFFormField: {"forged"}}))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestCSRFAcceptsFormFieldAndHeader(t *testing.T) {
	s := newStack(t)
	cookies, token := s.session(t)

	res := httptest.NewRecorder()
	s.router.ServeHTTP(res, post(cookies, url.Values{shared.CSRFFormField: {token}}))
	assert.Equal(t, http.StatusNoContent, res.Code)

	req := post(cookies, url.Values{"_field": {"amount"}})
	req.Header.Set(shared.CSRFHeader, token)
	res = httptest.NewRecorder()
	s.router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNoContent, res.Code)
}

func TestSessionCookieIsIssued(t *testing.T) {
	s := newStack(t)
	cookies, _ := s.session(t)
	var found bool
	for _, c := range cookies {
		if c.Name == "sid" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found)

	sess, err := s.sessions.Load(context.Background(), func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey), "the token generated during the request was persisted")
}

func TestLocaleNegotiation(t *testing.T) {
	s := newStack(t)

	get := func(target, acceptLanguage string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if acceptLanguage != "" {
			req.Header.Set("Accept-Language", acceptLanguage)
		}
		for _, c := range cookies {
			req.AddCookie(c)
		}
		res := httptest.NewRecorder()
		s.router.ServeHTTP(res, req)
		return res
	}

	assert.Equal(t, "bg", get("/locale", "").Body.String())
	assert.Equal(t, "en", get("/locale", "en-US,en;q=0.9").Body.String())
	assert.Equal(t, "bg", get("/locale", "de-DE").Body.String())

	res := get("/locale?lang=en", "bg")
	assert.Equal(t, "en", res.Body.String())
	var langCookie *http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == localeCookie {
			langCookie = c
		}
	}
	require.NotNil(t, langCookie)
	assert.Equal(t, "en", langCookie.Value)

	assert.Equal(t, "en", get("/locale", "bg", langCookie).Body.String())
	assert.Equal(t, "bg", get("/locale?lang=fr", "bg").Body.String(), "unsupported choices are ignored")
}

func TestSecurityHeaders(t *testing.T) {
	s := newStack(t)
	res := httptest.NewRecorder()
	s.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/locale", nil))
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", res.Header().Get("Content-Security-Policy"))
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("IN_FLIGHT_TTL", "45s")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.InFlightTTL)
	assert.Equal(t, "bg", cfg.DefaultLocale)
	assert.False(t, cfg.IsProduction())
}
