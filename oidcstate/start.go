package oidcstate

import (
	"context"

	"github.com/unraid/api-oidc-state/internal/config"
	"github.com/unraid/api-oidc-state/internal/errors"
	"github.com/unraid/api-oidc-state/internal/logging"
)

// Start builds the process state service from cfg and launches its sweeper.
// The logger comes from logging.New(cfg) unless an option overrides it. The
// sweeper stops when ctx is cancelled or Stop is called.
func Start(ctx context.Context, cfg config.Config, repo Repo, opt ...Option) (*Service, *Sweeper, error) {
	if cfg == nil {
		return nil, nil, errors.Wrapf(errors.ErrInvalidParameter, "config is nil")
	}

	opts := append([]Option{WithLogger(logging.New(cfg))}, opt...)
	svc, err := NewService(cfg, repo, opts...)
	if err != nil {
		return nil, nil, err
	}

	sweeper := NewSweeper(svc, cfg)
	sweeper.Start(ctx)

	svc.logger.Info().
		Dur("ttl", svc.TTL()).
		Dur("sweep_interval", sweeper.Interval()).
		Msg("OIDC state service started")
	return svc, sweeper, nil
}
