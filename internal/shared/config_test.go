package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads a valid config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[credentials.spotify]
client_id = "abc123"
client_secret = "secret"
redirect_uri = "http://localhost:8080/callback"

[database]
path = "test.db"
max_open_conns = 5
max_idle_conns = 2

[server]
host = "127.0.0.1"
port = 9090

[recommend]
default_limit = 15
market = "GB"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "abc123" {
			t.Errorf("expected client_id abc123, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Database.Path != "test.db" {
			t.Errorf("expected database path test.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if config.Recommend.DefaultLimit != 15 {
			t.Errorf("expected default_limit 15, got %d", config.Recommend.DefaultLimit)
		}
		if config.Recommend.Market != "GB" {
			t.Errorf("expected market GB, got %s", config.Recommend.Market)
		}
	})

	t.Run("applies environment overrides", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[credentials.spotify]
client_id = "from-file"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "from-env")
		t.Setenv("ENCORE_PORT", "4242")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from-env" {
			t.Errorf("expected env override from-env, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 4242 {
			t.Errorf("expected env override port 4242, got %d", config.Server.Port)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.toml")
		if err == nil {
			t.Error("expected error for missing file, got nil")
		}
	})

	t.Run("returns error for invalid TOML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := LoadConfig(path)
		if err == nil {
			t.Error("expected error for invalid TOML, got nil")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path == "" {
		t.Error("expected default database path to be set")
	}
	if config.Server.Port == 0 {
		t.Error("expected default server port to be set")
	}
	if config.Recommend.DefaultLimit <= 0 {
		t.Error("expected default recommend limit to be positive")
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile failed: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config should be loadable: %v", err)
		}
		if config.Server.Host == "" {
			t.Error("expected server host in created config")
		}
	})

	t.Run("refuses to overwrite existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists, got nil")
		}
	})
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	config := DefaultConfig()
	config.Credentials.Spotify.ClientID = "saved-id"

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Credentials.Spotify.ClientID != "saved-id" {
		t.Errorf("expected saved-id, got %s", loaded.Credentials.Spotify.ClientID)
	}
}

func TestSpotifyConfig(t *testing.T) {
	t.Run("Validate rejects missing credentials", func(t *testing.T) {
		cfg := SpotifyConfig{}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty credentials, got nil")
		}
	})

	t.Run("Validate accepts complete credentials", func(t *testing.T) {
		cfg := SpotifyConfig{ClientID: "id", ClientSecret: "secret"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("OAuthConfig carries credentials and endpoints", func(t *testing.T) {
		cfg := SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/cb"}
		oc := cfg.OAuthConfig()
		if oc.ClientID != "id" || oc.ClientSecret != "secret" {
			t.Error("expected oauth config to carry credentials")
		}
		if oc.Endpoint.TokenURL == "" || oc.Endpoint.AuthURL == "" {
			t.Error("expected oauth endpoints to be set")
		}
	})
}

func TestServerConfigAddr(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", Port: 8080}
	if got := cfg.Addr(); got != "localhost:8080" {
		t.Errorf("expected localhost:8080, got %s", got)
	}
}
