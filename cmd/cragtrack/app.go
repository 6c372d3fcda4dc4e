package main

import (
	"fmt"

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/config"
	"github.com/cragtrack/cragtrack/pkg/grade"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/logger"
	"github.com/cragtrack/cragtrack/pkg/mirror"
	"github.com/cragtrack/cragtrack/pkg/remote"
	"github.com/cragtrack/cragtrack/pkg/session"
	"github.com/cragtrack/cragtrack/pkg/store"
	"github.com/cragtrack/cragtrack/pkg/sync"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg        *config.Config
	cfgPath    string
	log        logger.Logger
	gateway    store.Gateway
	auth       *identity.State
	remote     *remote.Client
	mirror     *mirror.Mirror
	climbs     *climb.Store
	tracker    *session.Tracker
	reconciler *sync.Reconciler
}

// newApp loads configuration and wires the full component graph.
func newApp(configPath string) (*app, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	gateway, err := store.Open(store.Config{DBPath: cfg.Storage.DBPath}, logger.Component(log, "store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	auth := identity.NewState()
	if cfg.Remote.UserID != "" {
		auth.SetIdentity(identity.Identity{UserID: cfg.Remote.UserID})
	}

	a := &app{
		cfg:     cfg,
		cfgPath: configPath,
		log:     log,
		gateway: gateway,
		auth:    auth,
	}

	if cfg.Remote.BaseURL != "" {
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.Remote.BaseURL,
			APIKey:  cfg.Remote.APIKey,
			Timeout: cfg.Remote.Timeout,
		}, auth)
		if err != nil {
			gateway.Close()
			return nil, fmt.Errorf("failed to create remote client: %w", err)
		}
		a.remote = client
		a.mirror = mirror.New(mirror.Config{}, logger.Component(log, "mirror"))
		a.reconciler = sync.New(client, auth, logger.Component(log, "sync"))
	}

	climbCfg := climb.Config{Gateway: gateway, Auth: auth, Mirror: a.mirror}
	if a.remote != nil {
		climbCfg.Remote = a.remote
	}
	a.climbs = climb.NewStore(climbCfg, logger.Component(log, "climbs"))

	sessCfg := session.Config{Gateway: gateway, Climbs: a.climbs, Auth: auth, Mirror: a.mirror}
	if a.remote != nil {
		sessCfg.Remote = a.remote
	}
	a.tracker = session.NewTracker(sessCfg, logger.Component(log, "sessions"))

	return a, nil
}

// close flushes the mirror queue and releases the store.
func (a *app) close() {
	if a.mirror != nil {
		a.mirror.Close()
	}
	if a.gateway != nil {
		if err := a.gateway.Close(); err != nil {
			a.log.Warn("failed to close store", "error", err)
		}
	}
}

// gradeSettings returns the effective grade display settings. Settings
// persisted in the store take precedence over the configuration file.
func (a *app) gradeSettings() grade.Settings {
	var stored grade.Settings
	found, err := a.gateway.Load(store.KeyAppSettings, &stored)
	if err == nil && found && stored.Valid() {
		return stored
	}
	return a.cfg.Display.GradeSettings()
}
