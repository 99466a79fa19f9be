package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is used for the config and data directory names
	AppName = "atom-tasks"

	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// API settings
	APIURL string

	// Signing settings, the secret must match the backend's
	JWTSecret    string
	JWTExpiresIn string

	// Local state settings
	DataDir        string
	StorageBackend string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:3000/api",
		JWTExpiresIn:   "24h",
		StorageBackend: StorageFile,
	}
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/atom-tasks/config.yaml,
// falling back to ~/.config/atom-tasks/config.yaml
func DefaultConfigFile() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("."+AppName, "config.yaml")
	}
	return filepath.Join(home, ".config", AppName, "config.yaml")
}

// LoadFromFile overlays values found in the config file at path.
// A missing file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if v.IsSet("api_url") {
		c.APIURL = v.GetString("api_url")
	}
	if v.IsSet("jwt_secret") {
		c.JWTSecret = v.GetString("jwt_secret")
	}
	if v.IsSet("jwt_expires_in") {
		c.JWTExpiresIn = v.GetString("jwt_expires_in")
	}
	if v.IsSet("data_dir") {
		c.DataDir = v.GetString("data_dir")
	}
	if v.IsSet("storage_backend") {
		c.StorageBackend = v.GetString("storage_backend")
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if apiURL := os.Getenv("ATOM_API_URL"); apiURL != "" {
		c.APIURL = apiURL
	}

	if secret := os.Getenv("ATOM_JWT_SECRET"); secret != "" {
		c.JWTSecret = secret
	}

	if expires := os.Getenv("ATOM_JWT_EXPIRES_IN"); expires != "" {
		c.JWTExpiresIn = expires
	}

	if dataDir := os.Getenv("ATOM_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}

	if backend := os.Getenv("ATOM_STORAGE_BACKEND"); backend != "" {
		c.StorageBackend = backend
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api url must be an absolute http(s) URL, got: %q", c.APIURL)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt secret cannot be empty (set ATOM_JWT_SECRET)")
	}

	switch c.StorageBackend {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("storage backend must be %q or %q, got: %q", StorageFile, StorageSQLite, c.StorageBackend)
	}

	return nil
}
