package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	tokenExpiryKey  = "token_expiry"
)

// StoreToken keeps the token pair on the session and marks it as signed in.
func StoreToken(sess *shared.Session, token *oauth2.Token, user User) {
	sess.Set(accessTokenKey, token.AccessToken)
	if token.RefreshToken != "" {
		sess.Set(refreshTokenKey, token.RefreshToken)
	}
	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = user.Expiry
	}
	sess.Set(tokenExpiryKey, expiry.UTC().Format(time.RFC3339))
	sess.Set(view.DisplayNameKey, user.DisplayName())
	sess.SetSubject(user.Subject)
}

// TokenFromSession restores the token pair.
func TokenFromSession(sess *shared.Session) (*oauth2.Token, bool) {
	access := sess.Get(accessTokenKey)
	if access == "" {
		return nil, false
	}
	token := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: sess.Get(refreshTokenKey),
		TokenType:    "Bearer",
	}
	if raw := sess.Get(tokenExpiryKey); raw != "" {
		if expiry, err := time.Parse(time.RFC3339, raw); err == nil {
			token.Expiry = expiry
		}
	}
	return token, true
}

// ClearToken signs the session out.
func ClearToken(sess *shared.Session) {
	for _, key := range []string{accessTokenKey, refreshTokenKey, tokenExpiryKey, view.DisplayNameKey} {
		sess.Delete(key)
	}
	sess.SetSubject("")
}

// SessionTokens supplies the bearer token of the request session to the API
// client. It never modifies the session.
type SessionTokens struct{}

// Token returns the access token bound to ctx.
func (SessionTokens) Token(ctx context.Context) (string, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return "", ErrNotAuthenticated
	}
	token := sess.Get(accessTokenKey)
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}
