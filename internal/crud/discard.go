package crud

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/forms"
)

// DiscardHandler unmounts a form instance when the operator cancels. A
// mutation still in flight for it is dropped when its response arrives.
type DiscardHandler struct {
	store  forms.Store
	logger *slog.Logger
}

// NewDiscardHandler constructs a DiscardHandler.
func NewDiscardHandler(store forms.Store, logger *slog.Logger) *DiscardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscardHandler{store: store, logger: logger}
}

// MountRoutes registers POST /{formID}/discard.
func (h *DiscardHandler) MountRoutes(r chi.Router) {
	r.Post("/{formID}/discard", h.discard)
}

func (h *DiscardHandler) discard(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	if err := h.store.Delete(r.Context(), formID); err != nil {
		h.logger.Warn("discard form", slog.String("form", formID), slog.Any("error", err))
	}
	http.Redirect(w, r, auth.SafeNext(r.PostFormValue("next")), http.StatusSeeOther)
}
