// Package crud serves the list, detail and form pages shared by every
// resource editor.
package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/platform/httpx"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
)

// Resource describes one editor: its routes, API endpoint, form schema and
// grid columns. Name is both the URL segment and the translation prefix.
type Resource struct {
	Name     string
	Endpoint api.Endpoint
	Schema   *forms.Schema
	Columns  []grid.Column
	Detail   []grid.Column
	RowClick bool
}

func (r Resource) base() string { return "/" + r.Name }

// Backend is the API surface the handlers use.
type Backend interface {
	List(ctx context.Context, e api.Endpoint) api.Result
	Get(ctx context.Context, e api.Endpoint, id string) api.Result
	Create(ctx context.Context, e api.Endpoint, payload any) api.Result
	Edit(ctx context.Context, e api.Endpoint, id string, payload any) api.Result
	Delete(ctx context.Context, e api.Endpoint, id string) api.Result
}

// ViewCache caches successful reads.
type ViewCache interface {
	List(ctx context.Context, resource string, load func(context.Context) api.Result) api.Result
	Record(ctx context.Context, resource, id string, load func(context.Context) api.Result) api.Result
}

// Deps are the collaborators shared by every resource handler.
type Deps struct {
	API       Backend
	Views     ViewCache
	Store     forms.Store
	Pipeline  *forms.Pipeline
	Fetcher   forms.Fetcher
	Loads     forms.LoadRecorder
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Catalog   *i18n.Catalog
	Logger    *slog.Logger
}

// Handler serves one resource.
type Handler struct {
	res  Resource
	deps Deps
}

// NewHandler constructs a Handler.
func NewHandler(res Resource, deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if res.Detail == nil {
		res.Detail = res.Columns
	}
	return &Handler{res: res, deps: deps}
}

// Resource returns the served resource.
func (h *Handler) Resource() Resource { return h.res }

// MountRoutes registers the resource routes relative to /{name}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.newForm)
	r.Post("/", h.create)
	r.Post("/validate", h.validateField)
	r.Get("/{id}", h.detail)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := h.deps.Views.List(ctx, h.res.Name, func(ctx context.Context) api.Result {
		return h.deps.API.List(ctx, h.res.Endpoint)
	})
	if h.unauthorized(w, r, res) {
		return
	}
	lv := ListView{Resource: h.res.Name}
	var extra []shared.Notification
	if !res.OK() {
		h.deps.Logger.Warn("list records", slog.String("resource", h.res.Name), slog.String("kind", res.Kind.String()), slog.Any("error", res.Err))
		lv.Failed = true
		extra = append(extra, shared.Notification{Key: "alerts.load-failed", Severity: shared.SeverityError})
	}
	lv.Grid = grid.Build(res.Records, h.res.Columns, grid.Options{
		Base:     h.res.base(),
		RowClick: h.res.RowClick,
		Filters:  shared.ParseListFilters(r.URL.Query()),
		Pending: func(id string) bool {
			return h.deps.Pipeline.Pending(ctx, forms.RowKey(h.res.Name, id))
		},
	})
	h.render(w, r, http.StatusOK, "pages/grid.html", h.res.Name+".title", lv, extra...)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := h.record(r.Context(), id)
	if h.unauthorized(w, r, res) {
		return
	}
	if !res.OK() {
		h.missing(w, r, res)
		return
	}
	dv := DetailView{
		Resource: h.res.Name,
		ID:       id,
		EditURL:  h.res.base() + "/" + id + "/edit",
		ListURL:  h.res.base(),
	}
	row := grid.Build([]api.Record{res.Record}, h.res.Detail, grid.Options{Base: h.res.base()})
	if len(row.Rows) == 1 {
		for i, c := range h.res.Detail {
			dv.Rows = append(dv.Rows, DetailRow{Label: c.Label, Cell: row.Rows[0].Cells[i]})
		}
	}
	h.render(w, r, http.StatusOK, "pages/detail.html", h.res.Name+".detail", dv)
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	st := forms.Mount(h.res.Schema, forms.ModeCreate, "", nil)
	h.mount(w, r, st)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := h.record(r.Context(), id)
	if h.unauthorized(w, r, res) {
		return
	}
	if !res.OK() {
		h.missing(w, r, res)
		return
	}
	st := forms.Mount(h.res.Schema, forms.ModeEdit, id, res.Record)
	h.mount(w, r, st)
}

func (h *Handler) mount(w http.ResponseWriter, r *http.Request, st *forms.State) {
	ctx := r.Context()
	lists := h.lists(ctx)
	if cleared := forms.Reconcile(h.res.Schema, st, lists); len(cleared) > 0 {
		// A record can reference a child that no longer belongs to its parent.
		st.Initial = st.Values.Clone()
	}
	if err := h.deps.Store.Save(ctx, st); err != nil {
		h.deps.Logger.Error("save form state", slog.String("resource", h.res.Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderForm(w, r, http.StatusOK, st, lists, false)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, forms.ModeCreate, "")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, forms.ModeEdit, chi.URLParam(r, "id"))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, mode forms.Mode, recordID string) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	st, ok := h.loadState(w, r, r.PostForm.Get(formField), mode, recordID)
	if !ok {
		return
	}
	st.Apply(h.res.Schema, r.PostForm)
	lists := h.lists(ctx)

	if r.PostForm.Get(actionField) == actionRefresh {
		forms.Reconcile(h.res.Schema, st, lists)
		if err := h.deps.Store.Save(ctx, st); err != nil {
			h.deps.Logger.Warn("save form state", slog.String("form", st.ID), slog.Any("error", err))
		}
		h.renderForm(w, r, http.StatusOK, st, lists, false)
		return
	}

	successKey := h.res.Name + ".alerts.create"
	if mode == forms.ModeEdit {
		successKey = h.res.Name + ".alerts.edit"
	}
	out := h.deps.Pipeline.Submit(ctx, forms.Submission{
		Schema:     h.res.Schema,
		State:      st,
		Lists:      lists,
		Mutate:     h.mutation(mode, recordID),
		SuccessKey: successKey,
		Redirect:   h.res.base(),
	})

	switch out.Kind {
	case forms.OutcomeSaved:
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
	case forms.OutcomeStale:
		http.Redirect(w, r, h.res.base(), http.StatusSeeOther)
	case forms.OutcomeIgnored:
		h.renderForm(w, r, http.StatusAccepted, st, lists, true)
	case forms.OutcomeInvalid:
		h.renderForm(w, r, http.StatusUnprocessableEntity, st, lists, false)
	case forms.OutcomeRejected:
		if mode == forms.ModeEdit {
			h.reinitialize(ctx, st)
		}
		h.renderForm(w, r, http.StatusUnprocessableEntity, st, lists, false)
	default:
		if errors.Is(out.Err, api.ErrUnauthorized) {
			h.expire(w, r)
			return
		}
		h.renderForm(w, r, http.StatusOK, st, lists, false)
	}
}

// reinitialize merges the server's current record into a rejected edit so
// values changed elsewhere show up without losing the operator's edits.
func (h *Handler) reinitialize(ctx context.Context, st *forms.State) {
	res := h.deps.API.Get(ctx, h.res.Endpoint, st.RecordID)
	if !res.OK() {
		return
	}
	st.Reinitialize(h.res.Schema, res.Record)
	if err := h.deps.Store.Save(ctx, st); err != nil {
		h.deps.Logger.Warn("save form state", slog.String("form", st.ID), slog.Any("error", err))
	}
}

func (h *Handler) mutation(mode forms.Mode, recordID string) forms.Mutation {
	if mode == forms.ModeEdit {
		return func(ctx context.Context, payload map[string]any) api.Result {
			return h.deps.API.Edit(ctx, h.res.Endpoint, recordID, payload)
		}
	}
	return func(ctx context.Context, payload map[string]any) api.Result {
		return h.deps.API.Create(ctx, h.res.Endpoint, payload)
	}
}

// fieldResult is the blur validation response.
type fieldResult struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) validateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	name := r.PostForm.Get(fieldField)
	if _, ok := h.res.Schema.Field(name); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Unknown Field", name)
		return
	}
	st, err := h.deps.Store.Load(ctx, r.PostForm.Get(formField))
	if err != nil || st.Resource != h.res.Name {
		httpx.RespondError(w, httpx.ErrFormExpired)
		return
	}
	st.Apply(h.res.Schema, r.PostForm)
	msg, valid := st.ValidateField(h.res.Schema, name)
	if err := h.deps.Store.Save(ctx, st); err != nil {
		h.deps.Logger.Warn("save form state", slog.String("form", st.ID), slog.Any("error", err))
	}
	out := fieldResult{Field: name, Valid: valid}
	if !valid && h.deps.Catalog != nil {
		out.Message = h.deps.Catalog.T(shared.LocaleFromContext(ctx), msg.Key, msg.Param)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	res, ran := h.deps.Pipeline.DeleteRow(ctx, h.res.Name, id, func(ctx context.Context) api.Result {
		return h.deps.API.Delete(ctx, h.res.Endpoint, id)
	})
	if !ran {
		shared.SessionNotifier{}.Show(ctx, shared.Notification{Key: "alerts.delete-row.pending", Severity: shared.SeverityInfo})
	}
	if errors.Is(res.Err, api.ErrUnauthorized) {
		h.expire(w, r)
		return
	}
	http.Redirect(w, r, h.res.base(), http.StatusSeeOther)
}

func (h *Handler) record(ctx context.Context, id string) api.Result {
	return h.deps.Views.Record(ctx, h.res.Name, id, func(ctx context.Context) api.Result {
		return h.deps.API.Get(ctx, h.res.Endpoint, id)
	})
}

func (h *Handler) lists(ctx context.Context) map[string]forms.List {
	loader := forms.NewLoader(h.deps.Fetcher, h.deps.Logger, h.deps.Loads)
	return loader.LoadAll(ctx, h.res.Schema.References()...)
}

func (h *Handler) loadState(w http.ResponseWriter, r *http.Request, formID string, mode forms.Mode, recordID string) (*forms.State, bool) {
	st, err := h.deps.Store.Load(r.Context(), formID)
	if errors.Is(err, forms.ErrFormExpired) {
		shared.SessionNotifier{}.Show(r.Context(), shared.Notification{Key: "alerts.form-expired", Severity: shared.SeverityWarning})
		target := h.res.base() + "/new"
		if mode == forms.ModeEdit {
			target = h.res.base() + "/" + recordID + "/edit"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		h.deps.Logger.Error("load form state", slog.String("form", formID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	if st.Resource != h.res.Name || st.Mode != mode || st.RecordID != recordID {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	return st, true
}

func (h *Handler) missing(w http.ResponseWriter, r *http.Request, res api.Result) {
	key := "alerts.load-failed"
	if res.Status == http.StatusNotFound {
		key = "alerts.not-found"
	}
	shared.SessionNotifier{}.Show(r.Context(), shared.Notification{Key: key, Severity: shared.SeverityError})
	http.Redirect(w, r, h.res.base(), http.StatusSeeOther)
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request, res api.Result) bool {
	if !errors.Is(res.Err, api.ErrUnauthorized) {
		return false
	}
	h.expire(w, r)
	return true
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	auth.ExpireSession(w, r, h.res.base())
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, st *forms.State, lists map[string]forms.List, pending bool) {
	title := h.res.Name + ".new"
	if st.Mode == forms.ModeEdit {
		title = h.res.Name + ".edit"
	}
	h.render(w, r, status, "pages/form.html", title, buildForm(h.res, st, lists, pending))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, extra ...shared.Notification) {
	td := view.Page(r, h.deps.CSRF, title, data)
	td.Notifications = append(td.Notifications, extra...)
	if err := h.deps.Templates.RenderStatus(w, status, name, td); err != nil {
		h.deps.Logger.Error("render", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

const (
	formField     = "_form"
	actionField   = "_action"
	fieldField    = "_field"
	actionRefresh = "refresh"
)
