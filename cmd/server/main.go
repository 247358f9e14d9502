// Package main runs the invitation HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/partyinvite/backend/config"
	"github.com/partyinvite/backend/internal/actions"
	"github.com/partyinvite/backend/internal/admin"
	"github.com/partyinvite/backend/internal/guests"
	"github.com/partyinvite/backend/internal/middleware"
	"github.com/partyinvite/backend/internal/views"
	"github.com/partyinvite/backend/pkg/cache"
	"github.com/partyinvite/backend/pkg/database"
	"github.com/partyinvite/backend/pkg/redis"
	"github.com/partyinvite/backend/pkg/response"
)

// memoryDSN selects the in-process store instead of PostgreSQL.
const memoryDSN = "memory://"

// backend is the store plus its bootstrap diagnostics.
type backend struct {
	store guests.Store
	diag  actions.Diagnostics
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	be, err := openBackend(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer be.close()

	if cfg.Database.AutoMigrate {
		if err := be.diag.EnsureSchema(ctx); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	c, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	loader := cache.NewLoader(c, cfg.Cache.TTL, logger)
	guestSvc := guests.NewService(be.store, loader, logger)
	pages := views.NewPageCache(loader, logger)
	actionSvc := actions.NewService(guestSvc, pages, be.diag, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	views.NewHandler(guestSvc, cfg.Event, pages).Register(router)
	actions.NewHandler(actionSvc).Register(router)
	admin.NewHandler(guestSvc, actionSvc, cfg.Database.MaskedDSN(), logger).Register(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*backend, error) {
	if cfg.URL == memoryDSN {
		logger.Warn("using in-memory store; data is lost on restart")
		ms := guests.NewMemoryStore(nil)
		return &backend{store: ms, diag: ms, close: func() {}}, nil
	}
	pool, err := database.NewPostgresPool(ctx, cfg.URL, database.PoolOptions{
		MaxConns:       cfg.MaxConns,
		ConnectTimeout: cfg.ConnectTimeout,
		IdleTimeout:    cfg.IdleTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &backend{
		store: guests.NewRepository(pool),
		diag:  database.NewBootstrapper(pool, nil, logger),
		close: pool.Close,
	}, nil
}

// openCache returns the configured cache. An unreachable Redis falls back to memory.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, func()) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemory(), func() {}
	}
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis cache disabled, using memory", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return cache.NewRedis(rdb.Client, cfg.Cache.Prefix), func() { _ = rdb.Close() }
}

func newLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, _ := config.Build()
	return logger
}
