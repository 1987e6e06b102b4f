package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	apperrors "github.com/mapdata-service/internal/pkg/errors"
	"github.com/mapdata-service/internal/pkg/validator"
)

// mapKeyParam извлекает и проверяет :key из пути
func mapKeyParam(c *fiber.Ctx) (string, error) {
	key := utils.CopyString(c.Params("key"))
	if !validator.IsMapKey(key) {
		return "", apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"fields": map[string]interface{}{"key": "mapkey"},
		})
	}
	return key, nil
}

// itemKeyParam копирует :itemId, строка живёт дольше запроса
func itemKeyParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("itemId"))
}

// parseBody разбирает и валидирует тело запроса
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": "invalid request body",
		})
	}
	return validator.ValidateRequest(req)
}
