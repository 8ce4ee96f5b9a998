package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// SourcingHandler expone solicitudes de cotización y ofertas.
type SourcingHandler struct {
	sourcing *store.SourcingStore
}

// NewSourcingHandler construye el handler.
func NewSourcingHandler(sourcing *store.SourcingStore) *SourcingHandler {
	return &SourcingHandler{sourcing: sourcing}
}

// List filtra por q, status o category.
func (h *SourcingHandler) List(c *fiber.Ctx) error {
	var out []entity.SourcingRequest
	switch {
	case c.Query("q") != "":
		out = h.sourcing.Search(c.Query("q"))
	case c.Query("status") != "":
		out = h.sourcing.ByStatus(c.Query("status"))
	case c.Query("category") != "":
		out = h.sourcing.ByCategory(c.Query("category"))
	default:
		out = h.sourcing.List()
	}
	return c.JSON(dto.Paginate(out, page(c)))
}

// Create abre una solicitud.
func (h *SourcingHandler) Create(c *fiber.Ctx) error {
	var in store.SourcingInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Title == "" {
		return validation(c, "title es requerido")
	}
	id := h.sourcing.Create(in)
	r, _ := h.sourcing.Get(id)
	return c.Status(fiber.StatusCreated).JSON(r)
}

// Get devuelve la solicitud.
func (h *SourcingHandler) Get(c *fiber.Ctx) error {
	r, ok := h.sourcing.Get(c.Params("id"))
	if !ok {
		return notFound(c, "solicitud no encontrada")
	}
	return c.JSON(r)
}

// Update edita mientras admite ofertas.
func (h *SourcingHandler) Update(c *fiber.Ctx) error {
	var p store.SourcingPatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c)
	}
	if !h.sourcing.Update(c.Params("id"), p) {
		return notFound(c, "solicitud no encontrada o cerrada")
	}
	return h.Get(c)
}

// Remove elimina la solicitud.
func (h *SourcingHandler) Remove(c *fiber.Ctx) error {
	h.sourcing.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// AddBid registra una oferta.
func (h *SourcingHandler) AddBid(c *fiber.Ctx) error {
	var in store.BidInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.VendorID == "" {
		return validation(c, "vendorId es requerido")
	}
	bidID, err := h.sourcing.AddBid(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": bidID})
}

func (h *SourcingHandler) respond(c *fiber.Ctx, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return h.Get(c)
}

// AcceptBid acepta la oferta (no cambia el estado de la solicitud).
func (h *SourcingHandler) AcceptBid(c *fiber.Ctx) error {
	return h.respond(c, h.sourcing.AcceptBid(c.Params("id"), c.Params("bidId")))
}

// RejectBid rechaza la oferta.
func (h *SourcingHandler) RejectBid(c *fiber.Ctx) error {
	return h.respond(c, h.sourcing.RejectBid(c.Params("id"), c.Params("bidId")))
}

// Award adjudica a la oferta.
func (h *SourcingHandler) Award(c *fiber.Ctx) error {
	return h.respond(c, h.sourcing.Award(c.Params("id"), c.Params("bidId")))
}

// Close cierra sin adjudicar.
func (h *SourcingHandler) Close(c *fiber.Ctx) error {
	return h.respond(c, h.sourcing.Close(c.Params("id")))
}

// VendorBids ofertas de un proveedor.
func (h *SourcingHandler) VendorBids(c *fiber.Ctx) error {
	return c.JSON(h.sourcing.BidsByVendor(c.Params("vendorId")))
}
