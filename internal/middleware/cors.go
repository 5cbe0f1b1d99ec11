package middleware

import (
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured origins. The request ID and the ICS download
// filename are exposed to browser clients.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		ExposeHeaders: "X-Request-ID, Content-Disposition",
		MaxAge:        600,
	})
}
