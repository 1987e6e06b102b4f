package main

// @title Map Data Service API
// @version 1.0.0
// @description Сервис загрузки данных игровых карт. Сводит предметы, регионы, таблицы переводов и списки исключений в готовые к отрисовке данные.
// @description
// @description Основные возможности:
// @description - Каталог карт и загрузка данных карты с кешированием в Redis
// @description - Предметы по категориям, отсортированные для отображения
// @description - Выбор текущей карты с отбрасыванием устаревших загрузок
// @description - Сохранённые фильтры (категории, регионы) и избранное

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/mapdata-service/docs"
	"github.com/mapdata-service/internal/config"
	httpDelivery "github.com/mapdata-service/internal/delivery/http"
	"github.com/mapdata-service/internal/delivery/http/handler"
	"github.com/mapdata-service/internal/domain/repository"
	"github.com/mapdata-service/internal/executor"
	"github.com/mapdata-service/internal/infrastructure/source"
	"github.com/mapdata-service/internal/pkg/logger"
	"github.com/mapdata-service/internal/repository/cache"
	"github.com/mapdata-service/internal/repository/memory"
	"github.com/mapdata-service/internal/repository/postgres"
	redisRepo "github.com/mapdata-service/internal/repository/redis"
	"github.com/mapdata-service/internal/repository/sqlite"
	"github.com/mapdata-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, zap.String("service", "mapdata-api"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Map Data Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Int("maps", len(cfg.Maps)),
		zap.String("executor_mode", cfg.Executor.Mode),
		zap.String("filter_store", cfg.FilterStore.Driver),
	)
	if len(cfg.Maps) == 0 {
		log.Warn("No maps configured, set MAPS_CONFIG")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checks := make(map[string]handler.HealthCheck)

	// 3. Connect to Redis (кеш, стримы; обязателен только для redis-хранилища фильтров)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		if cfg.FilterStore.Driver == "redis" {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, running without cache and stream executor", zap.Error(err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		checks["redis"] = redisClient.Health
	}

	// 4. Filter-state store
	stateRepo, closeStore, err := newStateRepository(ctx, cfg, redisClient, log, checks)
	if err != nil {
		log.Fatal("Failed to initialize filter store", zap.Error(err))
	}
	defer closeStore()

	// 5. Executor
	var (
		cacheRepo repository.CacheRepository
		transport *executor.StreamTransport
	)
	if redisClient != nil {
		cacheRepo = cache.NewCacheRepository(redisClient)

		streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
		transport = executor.NewStreamTransport(streamRepo, cfg.Worker.ConsumerGroup, log)
		if err := transport.Start(ctx); err != nil {
			log.Warn("Stream transport not started", zap.Error(err))
			transport = nil
		}
	}

	var streamTransport executor.Transport
	if transport != nil {
		streamTransport = transport
	}
	exec := executor.New(ctx, cfg.Executor.Mode, streamTransport, cfg.Executor.Timeout, log)
	if transport != nil {
		if exec.Mode() == executor.ModeStream {
			defer transport.Close()
		} else {
			transport.Close()
		}
	}
	log.Info("Pipeline executor selected", zap.String("mode", exec.Mode()))

	// 6. Initialize Use Cases
	sourceRepo := source.NewSourceClient(&cfg.Source, log)
	mapDataUC := usecase.NewMapDataUseCase(cfg.Maps, sourceRepo, cacheRepo, exec, cfg.Cache.MapDataCacheTTL, log)
	session := usecase.NewSession(mapDataUC, log)
	filterUC := usecase.NewFilterStateUseCase(stateRepo, log)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP Handlers
	healthHandler := handler.NewHealthHandler(mapDataUC, checks, log)
	mapHandler := handler.NewMapHandler(mapDataUC, session, log)
	filterHandler := handler.NewFilterHandler(mapDataUC, filterUC, log)

	// 8. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, healthHandler, mapHandler, filterHandler)

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

// newStateRepository выбирает хранилище фильтров по FILTER_STORE_DRIVER
func newStateRepository(
	ctx context.Context,
	cfg *config.Config,
	redisClient *cache.Redis,
	log *zap.Logger,
	checks map[string]handler.HealthCheck,
) (repository.StateRepository, func(), error) {
	noop := func() {}

	switch cfg.FilterStore.Driver {
	case "redis":
		return cache.NewStateRepository(redisClient), noop, nil

	case "postgres":
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			return nil, noop, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		checks["postgres"] = db.Health
		return postgres.NewStateRepository(db), closer(db.Close, "PostgreSQL", log), nil

	case "sqlite":
		db, err := sqlite.New(&cfg.SQLite, log)
		if err != nil {
			return nil, noop, err
		}
		checks["sqlite"] = db.Health
		return sqlite.NewStateRepository(db), closer(db.Close, "SQLite", log), nil

	case "memory":
		log.Warn("Filter state is kept in memory and will be lost on restart")
		return memory.NewStateRepository(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown filter store driver %q", cfg.FilterStore.Driver)
	}
}

func closer(closeFn func() error, name string, log *zap.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Error("Failed to close "+name+" connection", zap.Error(err))
		}
	}
}
