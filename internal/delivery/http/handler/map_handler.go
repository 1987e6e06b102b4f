package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/mapdata-service/internal/pkg/errors"
	"github.com/mapdata-service/internal/pkg/utils"
	"github.com/mapdata-service/internal/usecase"
	"github.com/mapdata-service/internal/usecase/dto"
)

// MapHandler - каталог карт, данные карты и выбор текущей карты
type MapHandler struct {
	mapDataUC *usecase.MapDataUseCase
	session   *usecase.Session
	logger    *zap.Logger
}

// NewMapHandler - создание нового MapHandler
func NewMapHandler(mapDataUC *usecase.MapDataUseCase, session *usecase.Session, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		mapDataUC: mapDataUC,
		session:   session,
		logger:    logger,
	}
}

// ListMaps godoc
// @Summary Список карт
// @Description Возвращает карты из каталога MAPS_CONFIG
// @Tags Maps
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.MapsResponse}
// @Router /api/v1/maps [get]
func (h *MapHandler) ListMaps(c *fiber.Ctx) error {
	maps := dto.ToMapSummaries(h.mapDataUC.ListMaps())
	return utils.SendSuccess(c, dto.MapsResponse{Maps: maps}, &utils.Meta{
		Total: len(maps),
	})
}

// GetMapData godoc
// @Summary Данные карты
// @Description Загружает (или берёт из кеша) предметы, категории, регионы и границы карты
// @Tags Maps
// @Produce json
// @Param key path string true "Ключ карты"
// @Success 200 {object} utils.SuccessResponse{data=dto.MapDataResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key} [get]
func (h *MapHandler) GetMapData(c *fiber.Ctx) error {
	key, err := mapKeyParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	result, err := h.mapDataUC.LoadMap(c.Context(), key, nil)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ToMapDataResponse(result), &utils.Meta{
		Total:    len(result.Items),
		MapKey:   result.MapKey,
		Mode:     result.Mode,
		Cached:   result.Cached,
		TimeMSec: utils.ElapsedMS(start),
	})
}

// GetCategoryItems godoc
// @Summary Предметы категории
// @Description Отсортированная по имени группа предметов одной категории
// @Tags Maps
// @Produce json
// @Param key path string true "Ключ карты"
// @Param category path string true "ID категории"
// @Success 200 {object} utils.SuccessResponse{data=dto.CategoryItemsResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/categories/{category}/items [get]
func (h *MapHandler) GetCategoryItems(c *fiber.Ctx) error {
	key, err := mapKeyParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	category := c.Params("category")

	items, err := h.mapDataUC.GetCategoryItems(c.Context(), key, category)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CategoryItemsResponse{
		Category: category,
		Items:    items,
	}, &utils.Meta{
		Total:  len(items),
		MapKey: key,
	})
}

// InvalidateMap godoc
// @Summary Сбросить кеш карты
// @Tags Maps
// @Param key path string true "Ключ карты"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/cache [delete]
func (h *MapHandler) InvalidateMap(c *fiber.Ctx) error {
	key, err := mapKeyParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.mapDataUC.InvalidateMap(c.Context(), key); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendNoContent(c)
}

// SelectMap godoc
// @Summary Выбрать карту
// @Description Делает карту текущей и загружает её. Если за время загрузки выбрана другая карта, результат отбрасывается (409).
// @Tags Session
// @Produce json
// @Param key path string true "Ключ карты"
// @Success 200 {object} utils.SuccessResponse{data=dto.SelectResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/select [post]
func (h *MapHandler) SelectMap(c *fiber.Ctx) error {
	key, err := mapKeyParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	result, err := h.session.Select(c.Context(), key)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ToSelectResponse(result), &utils.Meta{
		MapKey:   result.MapKey,
		Mode:     result.Mode,
		Cached:   result.Cached,
		TimeMSec: utils.ElapsedMS(start),
	})
}

// GetCurrentSession godoc
// @Summary Текущая карта
// @Description Выбранная карта, прогресс загрузки и последняя ошибка
// @Tags Session
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/session/current [get]
func (h *MapHandler) GetCurrentSession(c *fiber.Ctx) error {
	state := h.session.Current()
	if state.MapKey == "" && !state.Loading {
		return utils.SendError(c, apperrors.ErrNoMapSelected)
	}

	return utils.SendSuccess(c, dto.ToSessionResponse(state), &utils.Meta{
		MapKey: state.MapKey,
	})
}
