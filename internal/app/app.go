package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/core"
	"github.com/vovakirdan/pokerdraws-server/internal/lease"
	transporthttp "github.com/vovakirdan/pokerdraws-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	leases          lease.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. Room leases
// live in Redis when RedisAddr is set and in process memory otherwise.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	leases, err := newLeaseStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := core.NewHub(core.Options{
		IdleTimeout: cfg.RoomIdleTimeout,
		Leases:      leases,
		LeaseTTL:    cfg.LeaseTTL,
	}, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		leases:          leases,
		log:             logger,
	}, nil
}

func newLeaseStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (lease.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("using in-memory room leases")
		return lease.NewMemory(), nil
	}

	rdb, err := lease.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("init redis leases: %w", err)
	}
	logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("using redis room leases")
	return lease.NewRedis(rdb), nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(hubCtx)
		close(hubDone)
	}()

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stopHub()
		<-hubDone
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		shutdownErr := a.server.Shutdown(shutdownCtx)

		// Rooms close their connections and release their leases.
		stopHub()
		<-hubDone
		a.cleanup()

		if shutdownErr != nil {
			return shutdownErr
		}
		return <-serverErr
	}
}

// cleanup closes the lease store.
func (a *App) cleanup() {
	if a.leases == nil {
		return
	}
	if err := a.leases.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close lease store")
	} else {
		a.log.Info().Msg("lease store closed")
	}
}
