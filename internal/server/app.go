// Package server wires the rackbook server together: blob store, document
// store, services, the HTTP API and the gRPC health endpoint. It also owns
// signal handling and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/auth"
	"github.com/dmitrijs2005/rackbook/internal/server/blobstore"
	"github.com/dmitrijs2005/rackbook/internal/server/config"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/httpapi"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rackbook/internal/server/services"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"

	gs "github.com/dmitrijs2005/rackbook/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager *repomanager.DocumentRepositoryManager
	publisher   events.Publisher
	handler     *httpapi.Handler
}

// newBlobStore is a seam for tests.
var newBlobStore = func(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.StoreBackend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	default:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			KeyPrefix:    c.S3KeyPrefix,
			UsePathStyle: c.S3UsePathStyle,
		})
	}
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	store := docstore.New(blobs, docstore.Options{
		Guarded:    c.ConcurrencyMode == config.ModeGuarded,
		MaxRetries: c.MaxWriteRetries,
		Timeout:    c.StoreTimeout,
	}, logger)
	docstore.RegisterDefaults(store, docstore.Seed{
		AdminPassword: c.SeedAdminPassword,
		UserPassword:  c.SeedUserPassword,
		Hash:          auth.HashPassword,
	})

	ids, err := idalloc.New(c.IDStrategy)
	if err != nil {
		return nil, err
	}
	rm := repomanager.NewDocumentRepositoryManager(store, ids)

	var pub events.Publisher = events.NewLogPublisher(logger)
	if len(c.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic, "rackbook")
		if err != nil {
			return nil, fmt.Errorf("kafka init error: %w", err)
		}
		pub = kp
	}

	v := validation.New()
	h := httpapi.NewHandler(
		services.NewDeviceService(rm, v, pub, logger),
		services.NewBookingService(rm, v, pub, logger, c),
		services.NewUserService(rm, v, pub, logger, c),
		rm,
		logger,
	)

	return &App{config: c, logger: logger, repomanager: rm, publisher: pub, handler: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repomanager, app.config.HealthProbeInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.handler, httpapi.RouterOptions{
		RateLimitPerSec:        app.config.RateLimitPerSec,
		RateLimitBurst:         app.config.RateLimitBurst,
		IdempotencyTTL:         app.config.IdempotencyTTL,
		RequireAuthForBookings: app.config.RequireAuthForBookings,
	})

	listen, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	srv := &http.Server{Handler: router}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"store", app.config.StoreBackend,
		"bucket", app.config.S3Bucket,
		"mode", app.config.ConcurrencyMode,
		"ids", app.config.IDStrategy,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Error(ctx, "event publisher close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
