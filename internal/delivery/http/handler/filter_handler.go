package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/mapdata-service/internal/pkg/errors"
	"github.com/mapdata-service/internal/pkg/utils"
	"github.com/mapdata-service/internal/usecase"
	"github.com/mapdata-service/internal/usecase/dto"
)

const maxItemKeyLength = 256

// FilterHandler - сохранённые фильтры и избранное карты
type FilterHandler struct {
	mapDataUC *usecase.MapDataUseCase
	filterUC  *usecase.FilterStateUseCase
	logger    *zap.Logger
}

// NewFilterHandler - создание нового FilterHandler
func NewFilterHandler(mapDataUC *usecase.MapDataUseCase, filterUC *usecase.FilterStateUseCase, logger *zap.Logger) *FilterHandler {
	return &FilterHandler{
		mapDataUC: mapDataUC,
		filterUC:  filterUC,
		logger:    logger,
	}
}

// GetFilters godoc
// @Summary Фильтры карты
// @Description Активные категории и регионы с учётом текущего набора данных, избранное
// @Tags Filters
// @Produce json
// @Param key path string true "Ключ карты"
// @Success 200 {object} utils.SuccessResponse{data=domain.FilterState}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/filters [get]
func (h *FilterHandler) GetFilters(c *fiber.Ctx) error {
	key, err := mapKeyParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	cfg, err := h.mapDataUC.GetMapConfig(key)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.mapDataUC.LoadMap(c.Context(), key, nil)
	if err != nil {
		return utils.SendError(c, err)
	}

	state, err := h.filterUC.GetState(c.Context(), result, cfg.DefaultCategory)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, state, &utils.Meta{MapKey: key})
}

// SetCategories godoc
// @Summary Заменить активные категории
// @Tags Filters
// @Accept json
// @Produce json
// @Param key path string true "Ключ карты"
// @Param request body dto.SetCategoriesRequest true "Категории"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/filters/categories [put]
func (h *FilterHandler) SetCategories(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetCategoriesRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	active, err := h.filterUC.SetActiveCategories(c.Context(), key, req.Categories)
	return h.sendList(c, key, active, err)
}

// ToggleCategory godoc
// @Summary Переключить категорию
// @Tags Filters
// @Accept json
// @Produce json
// @Param key path string true "Ключ карты"
// @Param request body dto.ToggleCategoryRequest true "Категория"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Router /api/v1/maps/{key}/filters/categories/toggle [post]
func (h *FilterHandler) ToggleCategory(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ToggleCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	active, err := h.filterUC.ToggleCategory(c.Context(), key, req.Category)
	return h.sendList(c, key, active, err)
}

// SetRegions godoc
// @Summary Заменить активные регионы
// @Tags Filters
// @Accept json
// @Produce json
// @Param key path string true "Ключ карты"
// @Param request body dto.SetRegionsRequest true "Регионы"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/maps/{key}/filters/regions [put]
func (h *FilterHandler) SetRegions(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetRegionsRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	active, err := h.filterUC.SetActiveRegions(c.Context(), key, req.Regions)
	return h.sendList(c, key, active, err)
}

// ToggleRegion godoc
// @Summary Переключить регион
// @Tags Filters
// @Accept json
// @Produce json
// @Param key path string true "Ключ карты"
// @Param request body dto.ToggleRegionRequest true "Регион"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Router /api/v1/maps/{key}/filters/regions/toggle [post]
func (h *FilterHandler) ToggleRegion(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ToggleRegionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	active, err := h.filterUC.ToggleRegion(c.Context(), key, req.Region)
	return h.sendList(c, key, active, err)
}

// GetFavorites godoc
// @Summary Избранное карты
// @Tags Favorites
// @Produce json
// @Param key path string true "Ключ карты"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Router /api/v1/maps/{key}/favorites [get]
func (h *FilterHandler) GetFavorites(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	favorites, err := h.filterUC.LoadFavorites(c.Context(), key)
	return h.sendList(c, key, favorites, err)
}

// ToggleFavorite godoc
// @Summary Добавить или убрать предмет из избранного
// @Tags Favorites
// @Produce json
// @Param key path string true "Ключ карты"
// @Param itemId path string true "Ключ предмета"
// @Success 200 {object} utils.SuccessResponse{data=dto.ListResponse}
// @Router /api/v1/maps/{key}/favorites/{itemId} [post]
func (h *FilterHandler) ToggleFavorite(c *fiber.Ctx) error {
	key, err := h.knownMap(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	itemKey := itemKeyParam(c)
	if itemKey == "" || len(itemKey) > maxItemKeyLength {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"fields": map[string]interface{}{"itemid": "max"},
		}))
	}

	favorites, err := h.filterUC.ToggleFavorite(c.Context(), key, itemKey)
	return h.sendList(c, key, favorites, err)
}

// knownMap проверяет, что карта есть в каталоге
func (h *FilterHandler) knownMap(c *fiber.Ctx) (string, error) {
	key, err := mapKeyParam(c)
	if err != nil {
		return "", err
	}
	if _, err := h.mapDataUC.GetMapConfig(key); err != nil {
		return "", err
	}
	return key, nil
}

func (h *FilterHandler) sendList(c *fiber.Ctx, key string, values []string, err error) error {
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.ListResponse{MapKey: key, Values: values}, &utils.Meta{
		Total:  len(values),
		MapKey: key,
	})
}
