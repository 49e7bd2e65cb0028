// Package server wires configuration, storage and the gRPC transport into
// the identity server process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/server/config"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shiftdesk/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/shiftdesk/internal/server/grpc"
)

const tokenPurgeInterval = 10 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	identity *services.IdentityService
	server   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}

	identity := services.NewIdentityService(repos, c, logger)
	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		identity: identity,
		server:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, identity, c.SecretKey),
	}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var opts []repomanager.Option
	if c.ProfileBackend == config.ProfileBackendS3 {
		client, err := profiles.NewS3Client(ctx, profiles.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, repomanager.WithProfileRepository(profiles.NewS3Repository(client, c.S3Bucket)))
	}

	if c.Storage == config.StorageMemory {
		return repomanager.NewMemoryRepositoryManager(opts...), nil
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return repomanager.NewPostgresRepositoryManager(db, opts...), nil
}

// Run serves until ctx is cancelled or the process receives SIGINT, SIGTERM
// or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage, "profiles", app.config.ProfileBackend)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})
	g.Go(func() error {
		app.purgeTokens(ctx, tokenPurgeInterval)
		return nil
	})

	err := g.Wait()
	if closeErr := app.repos.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) purgeTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.identity.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}
