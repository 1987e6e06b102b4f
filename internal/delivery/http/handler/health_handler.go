package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/pkg/utils"
	"github.com/mapdata-service/internal/usecase"
	"github.com/mapdata-service/internal/usecase/dto"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck проверяет одну зависимость сервиса
type HealthCheck func(ctx context.Context) error

// HealthHandler - состояние сервиса и его зависимостей
type HealthHandler struct {
	mapDataUC *usecase.MapDataUseCase
	checks    map[string]HealthCheck
	logger    *zap.Logger
}

// NewHealthHandler - создание нового HealthHandler
func NewHealthHandler(mapDataUC *usecase.MapDataUseCase, checks map[string]HealthCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		mapDataUC: mapDataUC,
		checks:    checks,
		logger:    logger,
	}
}

// Health godoc
// @Summary Health check
// @Description Состояние сервиса, режим исполнителя пайплайна и доступность хранилищ
// @Tags Health
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.HealthResponse}
// @Failure 503 {object} utils.SuccessResponse{data=dto.HealthResponse}
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:   "healthy",
		Executor: h.mapDataUC.ExecutorMode(),
		Checks:   make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "healthy" {
		c.Status(fiber.StatusServiceUnavailable)
	}
	return utils.SendSuccess(c, resp, nil)
}
