package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/cryptodash/internal/app"
	"github.com/newthinker/cryptodash/internal/config"
	"github.com/newthinker/cryptodash/internal/logger"
)

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration and builds the app. Short-lived commands get a
// quiet logger unless --debug is set, so the in-memory journal warning goes
// straight to stderr.
func openApp(cmd *cobra.Command) (*app.App, *config.Config, error) {
	log := zap.NewNop()
	if debug {
		log = logger.Must(true)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Build(cfg, nil, log)
	if err != nil {
		return nil, nil, fmt.Errorf("building app: %w", err)
	}
	if cfg.Storage.Journal.Driver != "sqlite" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: journal driver is memory, changes are lost when the command exits")
	}
	return a, cfg, nil
}
