package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// HeaderUserID header con el usuario autenticado que reenvía el gateway.
const HeaderUserID = "X-User-ID"

// LocalUserID key de c.Locals para el usuario del request.
const LocalUserID = "user_id"

// ActorMiddleware toma el usuario de X-User-ID y lo deja en c.Locals.
// La autenticación ocurre aguas arriba; aquí solo se exige el actor en operaciones que escriben.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID != "" {
			c.Locals(LocalUserID, userID)
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code:    "MISSING_ACTOR",
			Message: HeaderUserID + " requerido",
		})
	}
}

// GetUserID devuelve el usuario del contexto (después de ActorMiddleware).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
