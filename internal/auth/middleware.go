package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/podkrepi-bg/admin/internal/shared"
)

// expirySkew refreshes tokens slightly before Keycloak would reject them.
const expirySkew = 30 * time.Second

type userContextKey struct{}

// ContextWithUser stores the signed-in operator.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the signed-in operator.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey{}).(User)
	return u, ok
}

// LoginURL returns the login route that returns to next afterwards.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/auth/login"
	}
	return "/auth/login?next=" + url.QueryEscape(next)
}

// SafeNext accepts only same-site relative paths.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// RequireLogin redirects anonymous requests to the login page and refreshes
// expired access tokens.
func RequireLogin(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			token, ok := TokenFromSession(sess)
			if !ok {
				redirectToLogin(w, r)
				return
			}
			if !token.Expiry.IsZero() && time.Now().Add(expirySkew).After(token.Expiry) {
				fresh, err := service.Refresh(r.Context(), token)
				if err != nil {
					logger.Info("session token expired", slog.String("subject", sess.Subject()), slog.Any("error", err))
					ClearToken(sess)
					sess.Push(shared.Notification{Key: "alerts.session-expired", Severity: shared.SeverityWarning})
					redirectToLogin(w, r)
					return
				}
				token = fresh
				user, err := ParseUser(token.AccessToken)
				if err != nil {
					logger.Warn("parse refreshed token", slog.Any("error", err))
					ClearToken(sess)
					redirectToLogin(w, r)
					return
				}
				StoreToken(sess, token, user)
			}
			user, err := ParseUser(token.AccessToken)
			if err != nil {
				ClearToken(sess)
				redirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := ""
	if r.Method == http.MethodGet {
		next = r.URL.RequestURI()
	}
	http.Redirect(w, r, LoginURL(next), http.StatusSeeOther)
}

// ExpireSession drops the rejected token and sends the operator to sign in
// again. A GET returns to the same page afterwards, anything else to fallback.
func ExpireSession(w http.ResponseWriter, r *http.Request, fallback string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		ClearToken(sess)
		sess.Push(shared.Notification{Key: "alerts.session-expired", Severity: shared.SeverityWarning})
	}
	next := fallback
	if r.Method == http.MethodGet {
		next = r.URL.RequestURI()
	}
	http.Redirect(w, r, LoginURL(next), http.StatusSeeOther)
}
