package commands

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/config"
	"tableflip.dev/lifedots/pkg/logging"
	"tableflip.dev/lifedots/pkg/remote"
	"tableflip.dev/lifedots/pkg/store"
)

// env is what every command needs: the resolved config, a logger and the
// week store, local or remote.
type env struct {
	cfg *config.Config
	log *zap.Logger
	api app.API

	// local is nil when the config points at a remote server.
	local *app.Service
}

// loadEnv resolves the configuration and opens the week store. A full screen
// program must not log to the terminal, so tui selects the quiet logger.
func loadEnv(tui bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	build := logging.New
	if tui {
		build = logging.ForTerminalUI
	}
	log, err := build(cfg.Log)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}
	if cfg.IsRemote() {
		c, err := remote.New(cfg.Remote.URL, cfg.Remote.Token, remote.WithLogger(log.Named("remote")))
		if err != nil {
			return nil, err
		}
		e.api = c
		return e, nil
	}

	p, err := store.Load(cfg, store.WithLogger(log.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("open %s store at %s: %w", cfg.Driver, cfg.Path, err)
	}
	e.local = &app.Service{
		Persistence: p,
		UserID:      cfg.User,
		Log:         log.Named("app"),
	}
	e.api = e.local
	return e, nil
}

// location is the zone dates are shown in.
func (e *env) location() *time.Location { return time.Local }

func (e *env) Close() {
	if e.local != nil {
		if err := e.local.Persistence.Close(); err != nil {
			e.log.Warn("close store", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}
