// Package server wires configuration, storage, services and transports
// together and runs the HTTP and gRPC servers until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/config"
	"github.com/dmitrijs2005/aviato/internal/server/httpapi"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aviato/internal/server/services"
	"github.com/dmitrijs2005/aviato/internal/timex"

	gs "github.com/dmitrijs2005/aviato/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config              *config.Config
	logger              logging.Logger
	db                  *sql.DB
	userService         *services.UserService
	conversationService *services.ConversationService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	ev := availability.NewEvaluator(nil)
	clock := timex.SystemClock{}

	return &App{
		config:              c,
		logger:              logger,
		db:                  db,
		userService:         services.NewUserService(db, rm, ev, clock, logger),
		conversationService: services.NewConversationService(db, rm, ev, clock, logger),
	}, nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.conversationService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(app.userService, app.conversationService, []byte(app.config.SecretKey), app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until SIGINT, SIGTERM or SIGQUIT is received or one of the
// servers fails, then waits for both to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

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

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
