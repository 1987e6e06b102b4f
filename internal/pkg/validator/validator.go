package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/mapdata-service/internal/pkg/errors"
)

var (
	validate   *validator.Validate
	mapKeyExpr = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func init() {
	validate = validator.New()
	// mapkey - ключ карты используется в ключах хранилища, поэтому без ':' и пробелов
	_ = validate.RegisterValidation("mapkey", func(fl validator.FieldLevel) bool {
		return mapKeyExpr.MatchString(fl.Field().String())
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateRequest валидирует DTO и превращает ошибки полей в AppError
func ValidateRequest(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.ErrInvalidRequest
	}

	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"fields": fields,
	})
}

// IsMapKey проверяет формат ключа карты
func IsMapKey(key string) bool {
	return mapKeyExpr.MatchString(key)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
