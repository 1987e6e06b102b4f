package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/internal/delivery/http/handler"
	"github.com/mapdata-service/internal/delivery/http/middleware"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
	"github.com/mapdata-service/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	healthHandler *handler.HealthHandler
	mapHandler    *handler.MapHandler
	filterHandler *handler.FilterHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthHandler *handler.HealthHandler,
	mapHandler *handler.MapHandler,
	filterHandler *handler.FilterHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName: "Map Data Service",
		// загрузка карты без кеша включает скачивание и merge всех файлов
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
		// параметры пути сохраняются в сессии и хранилище фильтров после ответа
		Immutable: true,
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		healthHandler: healthHandler,
		mapHandler:    mapHandler,
		filterHandler: filterHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App возвращает fiber-приложение (используется в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.healthHandler.Health)

	// Maps
	api.Get("/maps", s.mapHandler.ListMaps)
	api.Get("/maps/:key", s.mapHandler.GetMapData)
	api.Delete("/maps/:key/cache", s.mapHandler.InvalidateMap)
	api.Get("/maps/:key/categories/:category/items", s.mapHandler.GetCategoryItems)

	// Session
	api.Post("/maps/:key/select", s.mapHandler.SelectMap)
	api.Get("/session/current", s.mapHandler.GetCurrentSession)

	// Filters
	api.Get("/maps/:key/filters", s.filterHandler.GetFilters)
	api.Put("/maps/:key/filters/categories", s.filterHandler.SetCategories)
	api.Post("/maps/:key/filters/categories/toggle", s.filterHandler.ToggleCategory)
	api.Put("/maps/:key/filters/regions", s.filterHandler.SetRegions)
	api.Post("/maps/:key/filters/regions/toggle", s.filterHandler.ToggleRegion)

	// Favorites
	api.Get("/maps/:key/favorites", s.filterHandler.GetFavorites)
	api.Post("/maps/:key/favorites/:itemId", s.filterHandler.ToggleFavorite)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, паники) в формате {error}
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		if code == fiber.StatusInternalServerError {
			return utils.SendError(c, apperrors.ErrInternalServer)
		}
		return c.Status(code).JSON(utils.ErrorResponse{
			Error: apperrors.New(httpErrorCode(code), err.Error(), code),
		})
	}
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "HTTP_ERROR"
	}
}
