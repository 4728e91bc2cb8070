package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"tasklist/internal/board"
	"tasklist/internal/config"
	"tasklist/internal/handlers"
	"tasklist/internal/logger"
	"tasklist/internal/middleware"
	"tasklist/internal/repository/task/inmemory"
	"tasklist/internal/service"
	"tasklist/internal/storage"
	"tasklist/internal/storage/file"
	"tasklist/internal/storage/sqlite"
	"tasklist/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository
	service    *service.TaskService
	board      *board.Board
	persister  storage.Persister
	saver      *storage.Saver
	worker     *worker.PriorityRefresher
	shutdowns  []func() error // run in reverse order on shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("App: Flushing logs")
		logger.Sync()
		return nil
	})

	a.repository = inmemory.NewTaskStorage()
	a.service = service.NewTaskService(a.repository)

	a.persister = a.openPersister()
	a.shutdowns = append(a.shutdowns, a.persister.Close)

	a.saver = storage.NewSaver(a.persister)
	a.service.Subscribe(a.saver.OnChange)

	result, err := storage.LoadInto(ctx, a.persister, a.service, a.saver)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("hydrate tasks: %w", err), a.close())
	}
	logger.Info("App: Tasks loaded",
		zap.String("storage", a.config.Storage.Type),
		zap.Int("loaded", result.Loaded),
		zap.Int("skipped", result.Skipped),
		zap.Bool("memory_only", a.saver.MemoryOnly()))

	a.board, err = board.NewBoard(ctx, a.service)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("board init: %w", err), a.close())
	}
	a.shutdowns = append(a.shutdowns, func() error {
		a.board.Close()
		return nil
	})

	interval := a.config.Refresher.Interval
	a.worker = worker.NewPriorityRefresher(a.service, &interval)

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "tasklist"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is done or a component fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.config.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("App: Server shutting down")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		return a.saver.Run(gctx)
	})

	err := g.Wait()
	return multierr.Append(err, a.close())
}

func (a *App) close() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func (a *App) newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(a.board.Seq))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	handlers.NewTaskHandler(a.board, a.service).Register(r)
	return r
}

// openPersister never fails: a store that cannot be opened leaves the
// session in memory only.
func (a *App) openPersister() storage.Persister {
	cfg := a.config.Storage

	var (
		p   storage.Persister
		err error
	)
	switch cfg.Type {
	case config.StorageFile:
		p, err = file.New(cfg.Path, cfg.Retention)
	case config.StorageSQLite:
		p, err = sqlite.Open(cfg.Path, cfg.Retention)
	default:
		return storage.NewMemory()
	}
	if err != nil {
		logger.Warn("App: Cannot open storage, continuing in memory only",
			zap.String("type", cfg.Type),
			zap.String("path", cfg.Path),
			zap.Error(service.NewPersistenceError("open", err)))
		return storage.NewMemory()
	}
	return p
}
