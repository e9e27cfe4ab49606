// Package server wires the secure-links service: it opens the database,
// runs migrations, loads the installation secret and starts the public
// HTTP server, the admin gRPC server and the hit recorder.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/securelinks/internal/dbx"
	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/access"
	"github.com/dmitrijs2005/securelinks/internal/server/analytics"
	"github.com/dmitrijs2005/securelinks/internal/server/auth"
	"github.com/dmitrijs2005/securelinks/internal/server/blobs"
	"github.com/dmitrijs2005/securelinks/internal/server/config"
	"github.com/dmitrijs2005/securelinks/internal/server/delivery"
	"github.com/dmitrijs2005/securelinks/internal/server/links"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securelinks/internal/server/secret"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
	"github.com/dmitrijs2005/securelinks/internal/server/web"

	gs "github.com/dmitrijs2005/securelinks/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	toggle   *access.Toggle
	recorder *analytics.Recorder
	http     *web.HTTPServer
	grpc     *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store secret.Store
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		store, err = secret.LoadOrCreate(ctx, rm.Secrets(tx))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("secret init error: %w", err)
	}

	codec, err := token.NewCodec(store.Secret())
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}

	generator, err := links.NewGenerator(codec, c.PublicBaseURL, c.ViewPath, c.DownloadPath, nil)
	if err != nil {
		return nil, fmt.Errorf("link generator init error: %w", err)
	}

	source, err := blobs.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob source init error: %w", err)
	}

	toggle := access.NewToggle(c.SecureLinksEnabled)
	verifier := access.NewVerifier(
		toggle,
		codec,
		rm.Documents(db),
		access.NewAssignmentGate(rm.Assignments(db)),
		logger,
		access.WithRevocations(rm.Revocations(db)),
	)

	recorder := analytics.NewRecorder(rm.Hits(db), c.AnalyticsBuffer, logger)

	jwtSecret := []byte(c.SecretKey)
	router := delivery.NewRouter(verifier, generator, source, recorder, logger,
		delivery.WithPages(c.LoginURL, c.HomeURL),
		delivery.WithRequester(func(r *http.Request) models.Requester {
			return auth.RequesterFromRequest(r, jwtSecret)
		}),
	)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		toggle:   toggle,
		recorder: recorder,
		http:     web.NewHTTPServer(c.EndpointAddrHTTP, router, c.ViewPath, c.DownloadPath, c.ShutdownTimeout, logger),
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, generator, codec, rm.Revocations(db), c.SecretKey),
	}, nil
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

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, name+" server failed", "error", err.Error())
		cancelFunc()
	}
}

type service struct {
	name string
	run  func(context.Context) error
}

// serve runs servers until ctx is done. The recorder has its own context,
// cancelled only after every server has returned, so hits from transfers
// still finishing during shutdown reach the store.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, record func(context.Context), servers ...service) {
	recCtx, stopRecorder := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRecorder()

	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		record(recCtx)
	}()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startServer(ctx, cancelFunc, s.name, s.run)
		}()
	}
	wg.Wait()

	stopRecorder()
	<-recDone
}

// Run blocks until a signal arrives or either server fails. Both servers
// stop first, then the recorder writes what is buffered and the database
// is closed.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "secure_links_enabled", app.toggle.Enabled())

	app.initSignalHandler(cancelFunc)

	app.serve(ctx, cancelFunc, app.recorder.Run,
		service{name: "HTTP", run: app.http.Run},
		service{name: "gRPC", run: app.grpc.Run},
	)

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
