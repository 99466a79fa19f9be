package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with secret", func(c *Config) {}, false},
		{"https url", func(c *Config) { c.APIURL = "https://tasks.example.com/api" }, false},
		{"relative url", func(c *Config) { c.APIURL = "/api" }, true},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://example.com" }, true},
		{"blank secret", func(c *Config) { c.JWTSecret = "  " }, true},
		{"sqlite backend", func(c *Config) { c.StorageBackend = StorageSQLite }, false},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.JWTSecret = "secret"
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "api_url = \"http://toml.example/api\"\nstorage_backend = \"sqlite\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	c := NewConfig()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatal(err)
	}
	if c.APIURL != "http://toml.example/api" || c.StorageBackend != StorageSQLite {
		t.Errorf("file not applied: %+v", c)
	}
	if c.JWTExpiresIn != "24h" {
		t.Errorf("unset keys must keep defaults, got %q", c.JWTExpiresIn)
	}

	if err := c.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ATOM_API_URL", "http://env.example/api")
	t.Setenv("ATOM_JWT_SECRET", "env-secret")
	t.Setenv("ATOM_JWT_EXPIRES_IN", "1h")
	t.Setenv("ATOM_DATA_DIR", "/tmp/atom")
	t.Setenv("ATOM_STORAGE_BACKEND", StorageSQLite)

	c := NewConfig()
	c.LoadFromEnvironment()

	want := Config{
		APIURL:         "http://env.example/api",
		JWTSecret:      "env-secret",
		JWTExpiresIn:   "1h",
		DataDir:        "/tmp/atom",
		StorageBackend: StorageSQLite,
	}
	if *c != want {
		t.Errorf("got %+v, want %+v", *c, want)
	}
}
