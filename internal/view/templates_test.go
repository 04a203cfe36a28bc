package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/web"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	catalog, err := i18n.Load(web.Locales, "bg")
	require.NoError(t, err)
	engine, err := NewEngine(catalog)
	require.NoError(t, err, "Templates should parse without error")
	return engine
}

func TestNewEngine(t *testing.T) {
	assert.NotNil(t, newEngine(t))
}

func TestRenderStatusTranslatesInLocale(t *testing.T) {
	engine := newEngine(t)

	rec := httptest.NewRecorder()
	data := TemplateData{
		Title:  "auth.login.title",
		Locale: "en",
		Notifications: []shared.Notification{
			{Key: "auth.welcome", Severity: shared.SeveritySuccess, Params: []string{"Maria"}},
		},
		Data: map[string]any{},
	}
	require.NoError(t, engine.RenderStatus(rec, 422, "pages/home.html", data))

	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Sign in")
	assert.Contains(t, body, "Welcome, Maria!")
	assert.Contains(t, body, `class="alert alert-success"`)
}

func TestRenderFallsBackToDefaultLocale(t *testing.T) {
	engine := newEngine(t)
	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/home.html", TemplateData{Title: "app.title", Locale: "de", Data: map[string]any{}}))
	assert.Contains(t, rec.Body.String(), `<html lang="bg">`)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine := newEngine(t)
	rec := httptest.NewRecorder()
	err := engine.Render(rec, "pages/missing.html", TemplateData{})
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
	assert.False(t, rec.Flushed)
}

func TestPageWithoutSession(t *testing.T) {
	req := httptest.NewRequest("GET", "/campaigns", nil)
	req = req.WithContext(shared.ContextWithLocale(req.Context(), "en"))
	td := Page(req, nil, "campaigns.title", 42)
	assert.Equal(t, "/campaigns", td.CurrentPath)
	assert.Equal(t, "en", td.Locale)
	assert.Equal(t, 42, td.Data)
	assert.Empty(t, td.CSRFToken)
}
