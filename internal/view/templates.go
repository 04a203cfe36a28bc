package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	catalog   *i18n.Catalog
}

// TemplateData contains values shared across templates. Title is a
// translation key.
type TemplateData struct {
	Title         string
	CSRFToken     string
	Notifications []shared.Notification
	CurrentPath   string
	User          string
	Locale        string
	Locales       []string
	Data          any

	tr i18n.Translator
}

// T translates key in the request locale.
func (d TemplateData) T(key string, params ...string) string { return d.tr.T(key, params...) }

// Amount formats a decimal in the request locale.
func (d TemplateData) Amount(value string) string { return d.tr.Amount(value) }

// Date formats an ISO date in the request locale.
func (d TemplateData) Date(value string) string { return d.tr.Date(value) }

// Notice translates a notification with its params.
func (d TemplateData) Notice(n shared.Notification) string { return d.tr.T(n.Key, n.Params...) }

// NewEngine parses templates at build-time.
func NewEngine(catalog *i18n.Catalog) (*Engine, error) {
	funcMap := template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
		"args":      func(v ...any) []any { return v },
		"severityClass": func(s shared.Severity) string {
			switch s {
			case shared.SeveritySuccess:
				return "alert-success"
			case shared.SeverityWarning:
				return "alert-warning"
			case shared.SeverityInfo:
				return "alert-info"
			default:
				return "alert-error"
			}
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, catalog: catalog}, nil
}

// Render executes a named template with TemplateData and status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a named template into a buffer and writes it with status.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	if e.catalog != nil {
		data.tr = e.catalog.For(data.Locale)
		data.Locale = data.tr.Locale()
		if len(data.Locales) == 0 {
			data.Locales = e.catalog.Locales()
		}
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Page builds the TemplateData of a request: CSRF token, pending
// notifications, locale and signed-in user come from the session and context.
func Page(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Locale:      shared.LocaleFromContext(ctx),
		Data:        data,
	}
	if sess == nil {
		return td
	}
	if csrf != nil {
		td.CSRFToken, _ = csrf.EnsureToken(ctx, sess)
	}
	td.Notifications = sess.Drain()
	td.User = sess.Get(DisplayNameKey)
	return td
}

// DisplayNameKey is the session value holding the signed-in user's name.
const DisplayNameKey = "display_name"
