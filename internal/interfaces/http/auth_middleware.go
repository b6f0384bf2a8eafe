package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
)

// Locals keys para el usuario autenticado y su credencial en Fiber.
const (
	LocalUserID = "user_id"
	LocalToken  = "token"
)

// AuthMiddleware valida el Bearer token con el verificador configurado y carga
// el UserID (owner) y el token crudo en c.Locals.
func AuthMiddleware(verifier ports.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "token vacío")
		}
		userID, err := verifier.Verify(c.UserContext(), tokenString)
		if err != nil || userID == "" {
			return unauthorized(c, "token inválido o expirado")
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalToken, tokenString)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{OK: false, Error: msg, Code: dto.CodeUnauthorized})
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetToken credencial del llamante; se reenvía al worker fiscal.
func GetToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}
