package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// DefaultCORSConfig allows the admin panel and the public site served from
// frontendURL, a comma separated list. An empty value falls back to the
// local dev server. Credentials are allowed for the access_token cookie.
func DefaultCORSConfig(frontendURL string) cors.Config {
	origins := []string{"http://localhost:3000"}
	if frontendURL != "" {
		origins = nil
		for _, origin := range strings.Split(frontendURL, ",") {
			if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		ExposeHeaders:    "Content-Length",
		MaxAge:           3600,
	}
}

func CORS(cfg cors.Config) fiber.Handler {
	return cors.New(cfg)
}
