package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Config locates the Keycloak realm.
type Config struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

// TokenURL returns the OpenID Connect token endpoint of the realm.
func (c Config) TokenURL() string {
	return strings.TrimRight(c.URL, "/") + "/realms/" + c.Realm + "/protocol/openid-connect/token"
}

// PasswordURL returns the account console page where operators change their
// password.
func (c Config) PasswordURL() string {
	return strings.TrimRight(c.URL, "/") + "/realms/" + c.Realm + "/account/password"
}

// Service exchanges operator credentials for Keycloak tokens.
type Service struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewService constructs a Service. httpClient may be nil.
func NewService(cfg Config, httpClient *http.Client) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"openid", "profile", "email"},
		},
		httpClient: httpClient,
	}
}

func (s *Service) context(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// Authenticate runs the resource owner password grant.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*oauth2.Token, User, error) {
	token, err := s.oauth.PasswordCredentialsToken(s.context(ctx), email, password)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < http.StatusInternalServerError {
			return nil, User{}, ErrInvalidCredentials
		}
		return nil, User{}, fmt.Errorf("auth: password grant: %w", err)
	}
	user, err := ParseUser(token.AccessToken)
	if err != nil {
		return nil, User{}, err
	}
	return token, user, nil
}

// Refresh exchanges the refresh token of an expired token for a new one.
func (s *Service) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	expired := &oauth2.Token{RefreshToken: token.RefreshToken}
	fresh, err := s.oauth.TokenSource(s.context(ctx), expired).Token()
	if err != nil {
		return nil, fmt.Errorf("auth: refresh: %w", err)
	}
	return fresh, nil
}
