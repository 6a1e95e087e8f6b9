package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/canvas-graph/internal/config"
	"github.com/Sternrassler/canvas-graph/pkg/canvas"
	"github.com/Sternrassler/canvas-graph/pkg/client"
	"github.com/Sternrassler/canvas-graph/pkg/logging"
)

// errConfig marks failures that happen before the first Canvas request.
var errConfig = errors.New("configuration error")

// session is everything a subcommand needs to talk to one server.
type session struct {
	profile   *client.ServerProfile
	client    *client.Client
	resources *canvas.Resources
	logger    zerolog.Logger
}

// open loads the config, resolves the selected server and builds the client.
func (o *globalOptions) open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	profile, err := cfg.ResolveProfile(ctx, o.server, o.apiToken, config.ShellEval)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	clientCfg := client.DefaultConfig(fmt.Sprintf("%s/%s", config.AppName, version))
	clientCfg.Timeout = o.timeout
	clientCfg.RequestsPerSecond = o.rate
	c, err := client.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	resources := canvas.NewResources(c)
	resources.PerPage = o.perPage

	logger := logging.NewLogger("cli")
	logger.Info().Object("server", profile).Msg("Using Canvas server")

	return &session{
		profile:   profile,
		client:    c,
		resources: resources,
		logger:    logger,
	}, nil
}
