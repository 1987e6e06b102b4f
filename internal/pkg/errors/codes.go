package errors

import "net/http"

var (
	ErrMapNotFound = New(
		"MAP_NOT_FOUND",
		"Map not found",
		http.StatusNotFound,
	)

	ErrCategoryNotFound = New(
		"CATEGORY_NOT_FOUND",
		"Category not found",
		http.StatusNotFound,
	)

	ErrInvalidPayload = New(
		"INVALID_PAYLOAD",
		"Invalid dataset payload",
		http.StatusUnprocessableEntity,
	)

	ErrSourceUnavailable = New(
		"SOURCE_UNAVAILABLE",
		"Data source unavailable",
		http.StatusBadGateway,
	)

	ErrSourceNotFound = New(
		"SOURCE_NOT_FOUND",
		"Data source not found",
		http.StatusNotFound,
	)

	ErrNoMapSelected = New(
		"NO_MAP_SELECTED",
		"No map is selected or loaded yet",
		http.StatusNotFound,
	)

	ErrLoadSuperseded = New(
		"LOAD_SUPERSEDED",
		"Another map was selected before this load finished",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
