package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"encore/internal/auth"
	"encore/internal/models"
	"encore/internal/repositories"
	"encore/internal/server"
	"encore/internal/shared"
)

// AuthLogin runs the OAuth2 authorization code flow and stores the granted
// credential. Without --listener the listener is registered (or matched by
// email) from the authorized account's profile.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	listenerID := cmd.String("listener")

	if err := r.config.Credentials.Spotify.Validate(); err != nil {
		return fmt.Errorf("%w: set Spotify client_id and client_secret in config.toml", err)
	}

	authenticator, err := auth.NewAuthenticator(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}

	cred, err := r.doOAuth(authenticator)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if listenerID == "" {
		listenerID, err = r.registerListener(ctx, db, cred)
		if err != nil {
			return err
		}
	}

	creds := repositories.NewCredentialRepository(db)
	if err := creds.Save(listenerID, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Credential stored for listener %s\n\n", listenerID)
	r.writePlain("You can now use: encore recommend --listener %s\n", listenerID)

	return nil
}

// registerListener resolves or creates the listener row for the account the
// credential belongs to.
func (r *Runner) registerListener(ctx context.Context, db *sql.DB, cred auth.Credential) (string, error) {
	client := r.newClient()
	client.SetToken(cred.AccessToken)

	profile, err := client.UserProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch account profile: %w", err)
	}

	listeners := repositories.NewListenerRepository(db)
	existing, err := listeners.GetByEmail(profile.Email)
	if err == nil {
		return existing.ID(), nil
	}
	if !errors.Is(err, shared.ErrListenerNotFound) {
		return "", err
	}

	listener := models.NewListener(0, profile.Email, profile.DisplayName, profile.Country)
	if err := listeners.Create(listener); err != nil {
		return "", fmt.Errorf("failed to register listener: %w", err)
	}
	r.logger.Info("registered listener", "id", listener.ID(), "email", profile.Email)
	return listener.ID(), nil
}

// AuthStatus shows the stored credential state for a listener.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	listenerID := cmd.StringArg("listener")
	if listenerID == "" {
		return fmt.Errorf("%w: listener id is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	creds := repositories.NewCredentialRepository(db)
	cred, err := creds.Load(listenerID)
	if errors.Is(err, shared.ErrNoCredential) {
		r.writePlain("✗ No credential stored for %s\n", listenerID)
		r.writePlain("Run 'encore auth login --listener %s' to authorize\n", listenerID)
		return nil
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Credential stored for %s\n", listenerID)
	r.writePlain("Expires: %s\n", cred.ExpiresAt.Format(time.RFC3339))
	if cred.Stale(time.Now()) {
		r.writePlain("State: stale (will refresh on next use)\n")
	} else {
		r.writePlain("State: fresh\n")
	}
	if cred.RefreshToken == "" {
		r.writePlain("⚠ No refresh token; reauthorization required at expiry\n")
	}
	return nil
}

// doOAuth runs the local callback server flow and returns the granted credential.
func (r *Runner) doOAuth(authenticator *auth.Authenticator) (auth.Credential, error) {
	var none auth.Credential

	state, err := shared.GenerateState()
	if err != nil {
		return none, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := authenticator.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(authenticator, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    r.config.Server.Addr(),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return none, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return none, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return none, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Credential.Empty() {
		return none, fmt.Errorf("no credential received")
	}

	return result.Credential, nil
}
