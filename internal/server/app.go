// Package server initializes and runs the vault application server: it opens
// the database, applies migrations, wires the services, and starts the HTTP
// endpoint with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sealvault/sealvault/internal/logging"
	"github.com/sealvault/sealvault/internal/server/config"
	"github.com/sealvault/sealvault/internal/server/httpapi"
	"github.com/sealvault/sealvault/internal/server/locks"
	"github.com/sealvault/sealvault/internal/server/repositories/repomanager"
	"github.com/sealvault/sealvault/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	vaultService *services.VaultService
	entryService *services.EntryService
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userLocks := locks.NewPerUser()

	us := services.NewUserService(db, rm, userLocks, cfg)
	vs := services.NewVaultService(db, rm, userLocks)
	es := services.NewEntryService(db, rm, userLocks)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		userService:  us,
		vaultService: vs,
		entryService: es,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger,
		app.userService, app.vaultService, app.entryService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
