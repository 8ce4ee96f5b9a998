package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// sessionReader lo que el middleware lee del store de sesión.
type sessionReader interface {
	State() entity.Session
}

// RequireSession exige una sesión local autenticada y deja UserID y Role en c.Locals.
func RequireSession(session sessionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := session.State()
		if !st.IsAuthenticated || st.User == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
		}
		c.Locals(LocalUserID, st.User.ID)
		c.Locals(LocalRole, st.User.Role)
		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. Debe ir DESPUÉS de RequireSession.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso"})
	}
}

// GetUserID devuelve el UserID del contexto (después de RequireSession).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después de RequireSession).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
