package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/insidejustjoin/justjoin-sub002/internal/catalog"
	handlers "github.com/insidejustjoin/justjoin-sub002/internal/handler"
	"github.com/insidejustjoin/justjoin-sub002/internal/interview"
	"github.com/insidejustjoin/justjoin-sub002/internal/models"
	"github.com/insidejustjoin/justjoin-sub002/pkg/cache"
	"github.com/insidejustjoin/justjoin-sub002/pkg/config"
	"github.com/insidejustjoin/justjoin-sub002/pkg/i18n"
	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	"github.com/insidejustjoin/justjoin-sub002/pkg/metrics"
	stores "github.com/insidejustjoin/justjoin-sub002/pkg/storage"
	"github.com/insidejustjoin/justjoin-sub002/pkg/util"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := util.OpenDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	if err := models.SeedQuestions(db); err != nil {
		logger.Fatal("question seed failed", zap.Error(err))
	}

	cacheBackend, err := cache.NewCache(cache.Config{
		Type:  cfg.CacheType,
		Redis: cache.RedisConfig{Addr: cfg.RedisAddr},
		Local: cache.LocalConfig{
			DefaultExpiration: 15 * time.Minute,
			CleanupInterval:   30 * time.Minute,
		},
	})
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	defer cacheBackend.Close()

	var store stores.Store
	if cfg.StorageType == "minio" {
		store = stores.NewMinioStore()
	} else {
		store = stores.NewLocalStore(cfg.StoragePath)
	}

	loc, err := i18n.NewI18nSupport(cfg.DefaultLanguage)
	if err != nil {
		logger.Fatal("i18n init failed", zap.Error(err))
	}

	m := metrics.NewMetrics(nil)
	cat := catalog.NewService(db, cacheBackend)
	evaluator := interview.NewEvaluator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	svc := interview.NewService(db, cat, evaluator, loc, m)

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), m.GinMiddleware())
	engine.GET("/metrics", metrics.Handler())
	handlers.NewHandlers(db, svc, cat, store).Register(engine)

	server := &http.Server{Addr: cfg.Addr, Handler: engine}

	go func() {
		logger.Info("interview server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
