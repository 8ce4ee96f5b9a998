package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// poRenderer exporta una orden a PDF (pdf.PurchaseOrderRenderer).
type poRenderer interface {
	Render(po entity.PurchaseOrder) ([]byte, error)
}

// PurchaseOrderHandler expone las órdenes de compra y sus transiciones.
type PurchaseOrderHandler struct {
	orders *store.PurchaseOrderStore
	pdf    poRenderer
}

// NewPurchaseOrderHandler construye el handler. pdf puede ser nil (sin exportación).
func NewPurchaseOrderHandler(orders *store.PurchaseOrderStore, pdf poRenderer) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, pdf: pdf}
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Produce      json
// @Param        status    query  string  false  "Estado"
// @Param        vendorId  query  string  false  "Proveedor"
// @Param        q         query  string  false  "Texto a buscar"
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var out []entity.PurchaseOrder
	switch {
	case c.Query("q") != "":
		out = h.orders.Search(c.Query("q"))
	case c.Query("status") != "":
		out = h.orders.ByStatus(c.Query("status"))
	case c.Query("vendorId") != "":
		out = h.orders.ByVendor(c.Query("vendorId"))
	default:
		out = h.orders.List()
	}
	return c.JSON(dto.Paginate(out, page(c)))
}

// Create crea la orden en borrador.
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in store.PurchaseOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.VendorID == "" {
		return validation(c, "vendorId es requerido")
	}
	return c.Status(fiber.StatusCreated).JSON(h.orders.Create(in))
}

// Get devuelve la orden.
func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
	po, ok := h.orders.Get(c.Params("id"))
	if !ok {
		return notFound(c, "orden no encontrada")
	}
	return c.JSON(po)
}

// Update edita la cabecera.
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	var p store.PurchaseOrderPatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c)
	}
	if !h.orders.Update(c.Params("id"), p) {
		return notFound(c, "orden no encontrada")
	}
	return h.Get(c)
}

// UpdateLines reemplaza las líneas (solo borrador).
func (h *PurchaseOrderHandler) UpdateLines(c *fiber.Ctx) error {
	var lines []store.POLineInput
	if err := c.BodyParser(&lines); err != nil {
		return badBody(c)
	}
	if err := h.orders.UpdateLineItems(c.Params("id"), lines); err != nil {
		return writeError(c, err)
	}
	return h.Get(c)
}

// Remove elimina la orden.
func (h *PurchaseOrderHandler) Remove(c *fiber.Ctx) error {
	h.orders.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PurchaseOrderHandler) respond(c *fiber.Ctx, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return h.Get(c)
}

// Submit borrador → pendiente de aprobación.
func (h *PurchaseOrderHandler) Submit(c *fiber.Ctx) error {
	return h.respond(c, h.orders.Submit(c.Params("id")))
}

// Approve aprueba con el nombre indicado o, si falta, el usuario de la sesión.
func (h *PurchaseOrderHandler) Approve(c *fiber.Ctx) error {
	var in struct {
		ApprovedBy string `json:"approvedBy"`
	}
	_ = c.BodyParser(&in)
	if in.ApprovedBy == "" {
		in.ApprovedBy = GetUserID(c)
	}
	return h.respond(c, h.orders.Approve(c.Params("id"), in.ApprovedBy))
}

// Send aprobada → enviada.
func (h *PurchaseOrderHandler) Send(c *fiber.Ctx) error {
	return h.respond(c, h.orders.Send(c.Params("id")))
}

// Receive registra recepción; body {"quantities": {"productId": n}} o vacío para todo.
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	var in struct {
		Quantities map[string]int `json:"quantities"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	return h.respond(c, h.orders.Receive(c.Params("id"), in.Quantities))
}

// Cancel cancela con motivo.
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&in)
	return h.respond(c, h.orders.Cancel(c.Params("id"), in.Reason))
}

// PDF exporta la orden.
func (h *PurchaseOrderHandler) PDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_DISABLED", Message: "exportación PDF no configurada"})
	}
	po, ok := h.orders.Get(c.Params("id"))
	if !ok {
		return notFound(c, "orden no encontrada")
	}
	b, err := h.pdf.Render(po)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+po.PONumber+`.pdf"`)
	return c.Send(b)
}
