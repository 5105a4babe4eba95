package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/versatil/versatil-backend/internal/data/db"
	apphttp "github.com/versatil/versatil-backend/internal/http"
	"github.com/versatil/versatil-backend/internal/observability"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

// App holds every wired dependency of the process.
type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *apphttp.Server

	dbService     *db.Service
	otelShutdown  func(context.Context) error
	cancelClients context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown, err := observability.InitOTel(ctx, log, cfg.Otel)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init otel: %w", err)
	}

	dbService, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	clientCtx, cancel := context.WithCancel(ctx)
	clientset, err := wireClients(clientCtx, log, cfg)
	if err != nil {
		cancel()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clientset)
	if err != nil {
		cancel()
		clientset.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	server := apphttp.NewServer(wireRouterConfig(log, cfg, serviceset, clientset))

	return &App{
		Log:           log,
		DB:            theDB,
		Cfg:           cfg,
		Repos:         reposet,
		Clients:       clientset,
		Services:      serviceset,
		Server:        server,
		dbService:     dbService,
		otelShutdown:  otelShutdown,
		cancelClients: cancel,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Starting server", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancelClients != nil {
		a.cancelClients()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
