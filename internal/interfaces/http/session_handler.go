package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// sessionGateway lo que el handler usa del cliente del backend.
type sessionGateway interface {
	SetCookies(cookies ...*http.Cookie)
	RefreshSession(ctx context.Context) error
	CurrentUser(ctx context.Context) (*entity.User, error)
}

// SessionHandler expone la sesión local.
type SessionHandler struct {
	auth    *store.AuthStore
	gateway sessionGateway
}

// NewSessionHandler construye el handler.
func NewSessionHandler(auth *store.AuthStore, gateway sessionGateway) *SessionHandler {
	return &SessionHandler{auth: auth, gateway: gateway}
}

// Get estado de la sesión.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.auth.State())
}

// Login godoc
// @Summary      Registrar la sesión del shell: importa las cookies y adopta el perfil que confirma el backend
// @Tags         session
// @Accept       json
// @Produce      json
// @Router       /api/session [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Cookies map[string]string `json:"cookies"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if h.gateway == nil {
		return unauthorized(c, "no hay backend para validar la sesión")
	}
	if len(in.Cookies) > 0 {
		cookies := make([]*http.Cookie, 0, len(in.Cookies))
		for name, value := range in.Cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
		}
		h.gateway.SetCookies(cookies...)
	}
	// El rol sale del perfil del backend, nunca del cuerpo de la petición.
	user, err := h.gateway.CurrentUser(c.UserContext())
	if errors.Is(err, domain.ErrTransient) {
		return writeError(c, err)
	}
	if err != nil || user == nil {
		return unauthorized(c, "sesión no validada por el backend")
	}
	h.auth.Login(*user)
	return c.Status(fiber.StatusCreated).JSON(h.auth.State())
}

// Logout cierra la sesión local.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout()
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh fuerza un refresco silencioso contra el backend.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	if h.gateway == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.gateway.RefreshSession(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
