package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	allocationapp "github.com/tradebooks/backend/internal/application/allocation"
	cashapp "github.com/tradebooks/backend/internal/application/cash"
	masterdataapp "github.com/tradebooks/backend/internal/application/masterdata"
	postingapp "github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/cache"
	"github.com/tradebooks/backend/internal/infrastructure/config"
	"github.com/tradebooks/backend/internal/infrastructure/einvoice"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/infrastructure/persistence"
	"github.com/tradebooks/backend/internal/interfaces/http/handler"
	"github.com/tradebooks/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	scope := persistence.NewGormTransactionScope(db.DB)

	postingService := postingapp.NewService(scope, log)
	if cfg.Idempotency.Enabled {
		postingService.SetIdempotencyStore(newIdempotencyStore(cfg, log), shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
		})
	}
	if cfg.EInvoice.Enabled {
		adapter, err := einvoice.NewHTTPAdapter(cfg.EInvoice)
		if err != nil {
			log.Fatal("failed to configure e-invoice adapter", zap.Error(err))
		}
		postingService.SetEInvoiceAdapter(adapter)
	}

	cashService := cashapp.NewService(scope, postingService, log)
	allocationService := allocationapp.NewService(scope, log)
	masterdataService := masterdataapp.NewService(scope, log)

	engine, err := router.New(cfg, router.Handlers{
		System:     handler.NewSystemHandler(db, log),
		Document:   handler.NewDocumentHandler(postingService, log),
		Cash:       handler.NewCashHandler(cashService, log),
		Allocation: handler.NewAllocationHandler(allocationService, log),
		Product:    handler.NewProductHandler(masterdataService, log),
		Partner:    handler.NewPartnerHandler(masterdataService, log),
	}, log)
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// newIdempotencyStore picks Redis when enabled, otherwise the in-memory
// store suitable for a single node.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			log.Info("using redis idempotency store",
				zap.String("host", cfg.Redis.Host),
				zap.Int("port", cfg.Redis.Port))
			return store
		}
		log.Warn("redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	return cache.NewInMemoryIdempotencyStore()
}
