package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// ComparisonHandler expone el comparador.
type ComparisonHandler struct {
	comparison *store.ComparisonStore
}

// NewComparisonHandler construye el handler.
func NewComparisonHandler(comparison *store.ComparisonStore) *ComparisonHandler {
	return &ComparisonHandler{comparison: comparison}
}

// List entradas actuales y si se puede agregar otra.
func (h *ComparisonHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"items":  h.comparison.List(),
		"canAdd": h.comparison.CanAdd(),
		"max":    entity.MaxComparisonEntries,
	})
}

// Add godoc
// @Summary      Agregar producto al comparador
// @Tags         comparison
// @Accept       json
// @Produce      json
// @Failure      409  {object}  dto.ErrorResponse  "comparador lleno"
// @Router       /api/comparison [post]
func (h *ComparisonHandler) Add(c *fiber.Ctx) error {
	var in entity.ComparisonEntry
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ID == "" {
		return validation(c, "id es requerido")
	}
	if err := h.comparison.Add(in); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"count": h.comparison.Count()})
}

// Remove quita la entrada (idempotente).
func (h *ComparisonHandler) Remove(c *fiber.Ctx) error {
	h.comparison.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear vacía el comparador.
func (h *ComparisonHandler) Clear(c *fiber.Ctx) error {
	h.comparison.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}
