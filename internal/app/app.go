// Package app builds the client's components once and hands them to the
// TUI and CLI front ends.
package app

import (
	"fmt"

	"github.com/kelsos/atom-tasks/internal/client"
	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/router"
	"github.com/kelsos/atom-tasks/internal/services"
	"github.com/kelsos/atom-tasks/internal/session"
	"github.com/kelsos/atom-tasks/internal/signing"
	"github.com/kelsos/atom-tasks/internal/storage"
	"github.com/kelsos/atom-tasks/internal/theme"
)

// Overrides are values given on the command line; empty fields are ignored
type Overrides struct {
	ConfigFile     string
	APIURL         string
	DataDir        string
	StorageBackend string
}

// LoadConfig resolves configuration from defaults, the config file, the
// environment and finally the overrides.
func LoadConfig(o Overrides) (*config.Config, error) {
	cfg := config.NewConfig()

	configFile := o.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigFile()
	}
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	cfg.LoadFromEnvironment()

	if o.APIURL != "" {
		cfg.APIURL = o.APIURL
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.StorageBackend != "" {
		cfg.StorageBackend = o.StorageBackend
	}

	if cfg.DataDir == "" {
		dir, err := storage.GetAppDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// App holds the long-lived components
type App struct {
	Config   *config.Config
	Storage  storage.Local
	Sessions *session.Store
	Signer   *signing.Signer
	Users    *services.UserService
	Tasks    *services.TaskService
	Theme    *theme.Manager
	Router   *router.Router
}

// New wires every component from cfg. system decides the theme when no
// preference is stored; nil means light.
func New(cfg *config.Config, system theme.SystemPreference) (*App, error) {
	local, err := storage.Open(cfg.StorageBackend, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	signer, err := signing.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		local.Close()
		return nil, err
	}
	logger.Debug("Signing requests with a %v expiry", signer.TTL())

	signed := signing.NewClient(client.NewAPIClient(cfg), signer)

	return &App{
		Config:   cfg,
		Storage:  local,
		Sessions: session.NewStore(local),
		Signer:   signer,
		Users:    services.NewUserService(signed),
		Tasks:    services.NewTaskService(signed),
		Theme:    theme.NewManager(local, system),
		Router:   router.New(),
	}, nil
}

func (a *App) Close() error {
	return a.Storage.Close()
}

// StartPath is the task view of the stored session, or login
func (a *App) StartPath() string {
	if id, ok := a.Sessions.UserID(); ok {
		return router.TasksPath(id)
	}
	return router.LoginPath
}

func (a *App) Guard(n notify.Notifier) *router.Guard {
	return router.NewGuard(a.Sessions, n)
}

func (a *App) LoginFlow(d flows.Dialogs, n notify.Notifier, nav router.Navigator) *flows.LoginFlow {
	return flows.NewLoginFlow(flows.LoginDeps{
		Users:     a.Users,
		Sessions:  a.Sessions,
		Dialogs:   d,
		Notifier:  n,
		Navigator: nav,
	})
}

func (a *App) TaskListFlow(d flows.Dialogs, n notify.Notifier, nav router.Navigator) *flows.TaskListFlow {
	return flows.NewTaskListFlow(flows.TaskListDeps{
		Tasks:     a.Tasks,
		Sessions:  a.Sessions,
		Dialogs:   d,
		Notifier:  n,
		Navigator: nav,
	})
}
