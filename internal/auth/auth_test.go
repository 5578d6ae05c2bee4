package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"encore/internal/shared"
)

func TestCredentialStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"fresh token", now.Add(time.Hour), false},
		{"just outside margin", now.Add(5*time.Minute + time.Second), false},
		{"exactly at margin boundary", now.Add(5 * time.Minute), true},
		{"inside margin", now.Add(2 * time.Minute), true},
		{"already expired", now.Add(-time.Minute), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cred := Credential{AccessToken: "tok", ExpiresAt: tc.expiresAt}
			if got := cred.Stale(now); got != tc.want {
				t.Errorf("Stale() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAuthenticator(t *testing.T) {
	t.Run("requires client credentials", func(t *testing.T) {
		_, err := NewAuthenticator(shared.SpotifyConfig{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})

	t.Run("AuthURL carries client id and state", func(t *testing.T) {
		a, err := NewAuthenticator(shared.SpotifyConfig{ClientID: "cid", ClientSecret: "sec"})
		if err != nil {
			t.Fatalf("NewAuthenticator failed: %v", err)
		}

		url := a.AuthURL("state-token")
		if !strings.Contains(url, "cid") {
			t.Error("expected auth url to contain client id")
		}
		if !strings.Contains(url, "state-token") {
			t.Error("expected auth url to contain state")
		}
	})

	t.Run("Exchange maps a failed code exchange", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		a, err := NewAuthenticator(shared.SpotifyConfig{ClientID: "cid", ClientSecret: "sec"})
		if err != nil {
			t.Fatalf("NewAuthenticator failed: %v", err)
		}
		a.config.Endpoint.TokenURL = server.URL

		_, err = a.Exchange(context.Background(), "bad-code")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected auth failed error, got %v", err)
		}
	})

	t.Run("Exchange returns the granted credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"granted","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
		}))
		defer server.Close()

		a, err := NewAuthenticator(shared.SpotifyConfig{ClientID: "cid", ClientSecret: "sec"})
		if err != nil {
			t.Fatalf("NewAuthenticator failed: %v", err)
		}
		a.config.Endpoint.TokenURL = server.URL

		cred, err := a.Exchange(context.Background(), "good-code")
		if err != nil {
			t.Fatalf("Exchange failed: %v", err)
		}
		if cred.AccessToken != "granted" || cred.RefreshToken != "rt" {
			t.Errorf("unexpected credential: %+v", cred)
		}
		if cred.ExpiresAt.Before(time.Now()) {
			t.Error("expected future expiry")
		}
	})
}

func TestRefresher(t *testing.T) {
	newRefresher := func(t *testing.T, tokenURL string) *Refresher {
		t.Helper()
		f, err := NewRefresher(shared.SpotifyConfig{ClientID: "cid", ClientSecret: "sec"}, nil)
		if err != nil {
			t.Fatalf("NewRefresher failed: %v", err)
		}
		f.config.Endpoint.TokenURL = tokenURL
		return f
	}

	t.Run("missing refresh token requires reauth", func(t *testing.T) {
		f, err := NewRefresher(shared.SpotifyConfig{ClientID: "cid", ClientSecret: "sec"}, nil)
		if err != nil {
			t.Fatalf("NewRefresher failed: %v", err)
		}

		_, err = f.Refresh(context.Background(), Credential{AccessToken: "tok"})
		if !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected reauth required, got %v", err)
		}
	})

	t.Run("rejected grant requires reauth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		f := newRefresher(t, server.URL)
		_, err := f.Refresh(context.Background(), Credential{AccessToken: "old", RefreshToken: "revoked"})
		if !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected reauth required, got %v", err)
		}
	})

	t.Run("returns rotated tokens", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":3600}`)
		}))
		defer server.Close()

		f := newRefresher(t, server.URL)
		cred, err := f.Refresh(context.Background(), Credential{AccessToken: "old", RefreshToken: "rt"})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if cred.AccessToken != "new-access" {
			t.Errorf("expected new access token, got %s", cred.AccessToken)
		}
		if cred.RefreshToken != "new-refresh" {
			t.Errorf("expected rotated refresh token, got %s", cred.RefreshToken)
		}
	})

	t.Run("retains refresh token when not rotated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"new-access","token_type":"Bearer","expires_in":3600}`)
		}))
		defer server.Close()

		f := newRefresher(t, server.URL)
		cred, err := f.Refresh(context.Background(), Credential{AccessToken: "old", RefreshToken: "keep-me"})
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if cred.RefreshToken != "keep-me" {
			t.Errorf("expected original refresh token retained, got %s", cred.RefreshToken)
		}
	})
}
