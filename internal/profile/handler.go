package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/platform/httpx"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
)

const base = "/" + Name

// PageView is the template model of the profile page.
type PageView struct {
	FormID      string
	Email       string
	PasswordURL string
	ValidateURL string
	Name        string
	Birthday    string
	Failed      bool
	Sections    []SectionView
}

// SectionView is one separately saved part of the page.
type SectionView struct {
	Key     string
	Title   string
	Action  string
	Open    bool
	Pending bool
	Fields  []crud.FieldView
}

// Handler serves the profile page of the signed-in operator.
type Handler struct {
	schema      *forms.Schema
	deps        crud.Deps
	passwordURL string
}

// NewHandler constructs a Handler. passwordURL links to the identity
// provider's password page and may be empty.
func NewHandler(deps crud.Deps, passwordURL string) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handler{schema: Schema(), deps: deps, passwordURL: passwordURL}
}

// MountRoutes registers the profile routes relative to /profile.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/validate", h.validateField)
	r.Post("/{section}", h.save)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := h.deps.API.Get(ctx, api.Account, "")
	if errors.Is(res.Err, api.ErrUnauthorized) {
		auth.ExpireSession(w, r, base)
		return
	}
	if !res.OK() {
		h.deps.Logger.Warn("load profile", slog.String("kind", res.Kind.String()), slog.Any("error", res.Err))
		h.render(w, r, http.StatusOK, PageView{Failed: true}, shared.Notification{Key: "alerts.load-failed", Severity: shared.SeverityError})
		return
	}
	st := forms.Mount(h.schema, forms.ModeEdit, res.Record.ID(), res.Record)
	if err := h.deps.Store.Save(ctx, st); err != nil {
		h.deps.Logger.Error("save form state", slog.String("resource", Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, h.page(ctx, st, "", false))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	section := chi.URLParam(r, "section")
	fields, ok := Fields(section)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	st.Apply(h.schema, r.PostForm)

	out := h.deps.Pipeline.Submit(ctx, forms.Submission{
		Schema: h.schema,
		State:  st,
		Mutate: func(ctx context.Context, payload map[string]any) api.Result {
			return h.deps.API.Edit(ctx, api.Account, "", payload)
		},
		SuccessKey: Name + ".alerts." + section,
		Redirect:   base,
		Fields:     fields,
		Refetch: func(ctx context.Context) api.Result {
			return h.deps.API.Get(ctx, api.Account, "")
		},
	})

	switch out.Kind {
	case forms.OutcomeSaved:
		h.render(w, r, http.StatusOK, h.page(ctx, st, "", false))
	case forms.OutcomeStale:
		http.Redirect(w, r, base, http.StatusSeeOther)
	case forms.OutcomeIgnored:
		h.render(w, r, http.StatusAccepted, h.page(ctx, st, section, true))
	case forms.OutcomeInvalid, forms.OutcomeRejected:
		h.render(w, r, http.StatusUnprocessableEntity, h.page(ctx, st, section, false))
	default:
		if errors.Is(out.Err, api.ErrUnauthorized) {
			auth.ExpireSession(w, r, base)
			return
		}
		h.render(w, r, http.StatusOK, h.page(ctx, st, section, false))
	}
}

func (h *Handler) validateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	name := r.PostForm.Get("_field")
	if _, ok := h.schema.Field(name); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Unknown Field", name)
		return
	}
	st, err := h.deps.Store.Load(ctx, r.PostForm.Get("_form"))
	if err != nil || st.Resource != Name {
		httpx.RespondError(w, httpx.ErrFormExpired)
		return
	}
	st.Apply(h.schema, r.PostForm)
	msg, valid := st.ValidateField(h.schema, name)
	if err := h.deps.Store.Save(ctx, st); err != nil {
		h.deps.Logger.Warn("save form state", slog.String("form", st.ID), slog.Any("error", err))
	}
	out := map[string]any{"field": name, "valid": valid}
	if !valid && h.deps.Catalog != nil {
		out["message"] = h.deps.Catalog.T(shared.LocaleFromContext(ctx), msg.Key, msg.Param)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*forms.State, bool) {
	st, err := h.deps.Store.Load(r.Context(), r.PostForm.Get("_form"))
	if errors.Is(err, forms.ErrFormExpired) {
		shared.SessionNotifier{}.Show(r.Context(), shared.Notification{Key: "alerts.form-expired", Severity: shared.SeverityWarning})
		http.Redirect(w, r, base, http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		h.deps.Logger.Error("load form state", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	if st.Resource != Name {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	return st, true
}

// page shows the saved values next to the section editors. open names the
// section to expand, the one just submitted when it needs attention.
func (h *Handler) page(ctx context.Context, st *forms.State, open string, pending bool) PageView {
	pv := PageView{
		FormID:      st.ID,
		PasswordURL: h.passwordURL,
		ValidateURL: base + "/validate",
		Name:        strings.TrimSpace(st.Initial["firstName"] + " " + st.Initial["lastName"]),
		Birthday:    st.Initial["birthday"],
	}
	if user, ok := auth.UserFromContext(ctx); ok {
		pv.Email = user.Email
	}
	for _, key := range sectionOrder {
		fields := sectionFields[key]
		sv := SectionView{
			Key:     key,
			Title:   Name + ".sections." + key,
			Action:  base + "/" + key,
			Open:    key == open,
			Pending: pending && key == open,
			Fields:  crud.BuildFields(h.schema, st, nil, fields...),
		}
		for _, name := range fields {
			if st.Dirty(name) {
				sv.Open = true
			}
		}
		pv.Sections = append(pv.Sections, sv)
	}
	return pv
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data PageView, extra ...shared.Notification) {
	td := view.Page(r, h.deps.CSRF, Name+".title", data)
	td.Notifications = append(td.Notifications, extra...)
	if err := h.deps.Templates.RenderStatus(w, status, "pages/profile.html", td); err != nil {
		h.deps.Logger.Error("render", slog.String("template", "pages/profile.html"), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
