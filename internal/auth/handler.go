package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Next     string `validate:"-"`
}

// LoginPage is the login template model. Errors hold translation keys.
type LoginPage struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	data := LoginPage{Form: loginForm{Next: SafeNext(r.URL.Query().Get("next"))}}
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     SafeNext(r.PostFormValue("next")),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[strings.ToLower(fieldErr.Field())] = "validation." + fieldErr.Tag()
			}
		}
	}

	if len(errs) == 0 {
		token, user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			errs["general"] = "auth.invalid-credentials"
		case err != nil:
			h.logger.Error("authenticate", slog.Any("error", err))
			errs["general"] = "auth.unavailable"
		default:
			StoreToken(sess, token, user)
			sess.Push(shared.Notification{Key: "auth.welcome", Severity: shared.SeveritySuccess, Params: []string{user.DisplayName()}})
			h.logger.Info("operator signed in", slog.String("subject", user.Subject))
			http.Redirect(w, r, form.Next, http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.render(w, r, http.StatusUnprocessableEntity, LoginPage{Form: form, Errors: errs})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.logger.Info("operator signed out", slog.String("subject", sess.Subject()))
		ClearToken(sess)
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data LoginPage) {
	td := view.Page(r, h.csrfManager, "auth.login.title", data)
	if err := h.templates.RenderStatus(w, status, "pages/login.html", td); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
