// package auth manages OAuth credentials for listeners.
//
// Credentials are resolved through a single path: an in-memory cache first,
// then the persistent store. Refreshing uses the OAuth refresh token grant
// and never re-runs the interactive authorization flow; when a refresh
// fails the caller receives [shared.ErrReauthRequired] and must send the
// listener back through authorization.
package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"encore/internal/shared"
)

// staleMargin is subtracted from the expiry when judging staleness, so a
// token is refreshed before it actually lapses mid-request.
const staleMargin = 5 * time.Minute

// Credential is an OAuth token pair for one listener.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Stale reports whether the access token should be refreshed before use.
// A credential is stale when now is within the margin of, or past, expiry.
func (c Credential) Stale(now time.Time) bool {
	return !now.Before(c.ExpiresAt.Add(-staleMargin))
}

// Empty reports whether no access token is present.
func (c Credential) Empty() bool {
	return c.AccessToken == ""
}

// Store persists credentials keyed by listener id.
// Implementations return [shared.ErrNoCredential] when no row exists.
type Store interface {
	Load(listenerID string) (Credential, error)
	Save(listenerID string, cred Credential) error
}

// Authenticator runs the interactive authorization code flow.
type Authenticator struct {
	config *oauth2.Config
}

// NewAuthenticator creates an Authenticator from the Spotify credentials config.
func NewAuthenticator(cfg shared.SpotifyConfig) (*Authenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Authenticator{config: cfg.OAuthConfig()}, nil
}

// SetTokenURL overrides the token endpoint. Used in tests.
func (a *Authenticator) SetTokenURL(url string) {
	a.config.Endpoint.TokenURL = url
}

// AuthURL returns the authorization URL the listener opens to grant access.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a credential.
func (a *Authenticator) Exchange(ctx context.Context, code string) (Credential, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: code exchange failed: %v", shared.ErrAuthFailed, err)
	}
	return Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}
