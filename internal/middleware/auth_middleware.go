package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/sdelka-api/internal/models"
	"github.com/rajivgeraev/sdelka-api/internal/utils"
)

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		tokenString := parts[1]
		payload, err := jwtService.ExtractPayload(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Заблокированный пользователь не допускается к API
		if payload.Blocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Пользователь заблокирован",
			})
		}

		// Добавляем данные пользователя в контекст
		c.Locals("user", payload)

		return c.Next()
	}
}

// CurrentUser возвращает аутентифицированного пользователя из контекста
func CurrentUser(c fiber.Ctx) models.TokenPayload {
	payload, _ := c.Locals("user").(models.TokenPayload)
	return payload
}
