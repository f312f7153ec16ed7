package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/api"
	"github.com/spec-kit/helpdesk-console/internal/config"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/events"
	"github.com/spec-kit/helpdesk-console/internal/observability"
	"github.com/spec-kit/helpdesk-console/internal/session"
)

// app bundles everything a command needs: config, logger, API client and
// the loaded session.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *api.Client
	session    *session.Session
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client := api.New(cfg.API, logger)
	sess := session.New(cfg.Session, client, logger)
	client.SetTokenSource(sess)
	if err := sess.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		session:    sess,
		dispatcher: events.NewInMemoryDispatcher(),
		metrics:    observability.NewMetrics(),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// requireActor resolves the policy actor for the stored login, refreshing
// the access token up front when it is already expired.
func (a *app) requireActor(ctx context.Context) (domain.Actor, error) {
	if !a.session.LoggedIn() {
		return domain.Actor{}, errors.New("not logged in, run: hdc login")
	}
	if err := a.session.EnsureFresh(ctx); err != nil {
		return domain.Actor{}, err
	}
	actor, err := a.session.Actor()
	if err != nil {
		return domain.Actor{}, err
	}
	if actor.OperatorID == 0 {
		// Stale credentials file from an older version; re-sync the profile.
		op, err := a.session.RefreshProfile(ctx)
		if err != nil {
			return domain.Actor{}, err
		}
		actor = op.ActorView()
	}
	return actor, nil
}
