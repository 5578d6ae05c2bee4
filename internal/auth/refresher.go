package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"encore/internal/shared"
)

// Refresher exchanges refresh tokens for fresh access tokens.
type Refresher struct {
	config *oauth2.Config
	logger *log.Logger
}

// NewRefresher creates a Refresher from the Spotify credentials config.
func NewRefresher(cfg shared.SpotifyConfig, logger *log.Logger) (*Refresher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Refresher{config: cfg.OAuthConfig(), logger: logger}, nil
}

// Refresh performs a refresh token grant and returns the new credential.
// The upstream does not always rotate refresh tokens; when the response
// omits one, the previous refresh token is retained.
//
// A rejected refresh token surfaces as [shared.ErrReauthRequired]; only the
// interactive flow can recover from it.
func (f *Refresher) Refresh(ctx context.Context, cred Credential) (Credential, error) {
	if cred.RefreshToken == "" {
		return Credential{}, fmt.Errorf("%w: %s", shared.ErrReauthRequired, shared.ErrNoRefreshToken)
	}

	// Expiry in the past forces the token source to hit the token endpoint.
	stale := &oauth2.Token{
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	token, err := f.config.TokenSource(ctx, stale).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			f.logger.Warn("refresh token rejected", "status", retrieveErr.Response.StatusCode)
			return Credential{}, fmt.Errorf("%w: refresh grant rejected: %v", shared.ErrReauthRequired, err)
		}
		return Credential{}, fmt.Errorf("%w: token refresh failed: %v", shared.ErrAuthFailed, err)
	}

	next := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}

	f.logger.Debug("access token refreshed", "expires_at", next.ExpiresAt)
	return next, nil
}
