package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const defaultAllowOrigins = "http://localhost:3000,http://localhost:5173"

// CORS разрешает запросы UI карты с указанных origin.
// Пустой список - локальные dev-серверы.
func CORS(allowOrigins []string) fiber.Handler {
	origins := strings.Join(allowOrigins, ",")
	if origins == "" {
		origins = defaultAllowOrigins
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Accept,Accept-Language",
		// с "*" браузер не принимает credentials
		AllowCredentials: origins != "*",
	})
}
