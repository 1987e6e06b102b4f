package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mapdata-service/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

// Meta - сведения о загрузке карты рядом с данными
type Meta struct {
	Total    int     `json:"total,omitempty"`
	MapKey   string  `json:"map_key,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	Cached   bool    `json:"cached,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// SendNoContent - 204 для операций без тела ответа
func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// SendError пишет AppError с его статусом; прочие ошибки скрываются за 500
func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}

// ElapsedMS - время с start в миллисекундах с точностью до микросекунды
func ElapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
