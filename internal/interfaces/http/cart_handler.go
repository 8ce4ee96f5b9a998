package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/currency"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// CartHandler expone el carrito.
type CartHandler struct {
	cart     *store.CartStore
	currency *currency.Store
}

// NewCartHandler construye el handler.
func NewCartHandler(cart *store.CartStore, cur *currency.Store) *CartHandler {
	return &CartHandler{cart: cart, currency: cur}
}

type cartResponse struct {
	Items   []entity.CartLineItem `json:"items"`
	Coupon  *entity.Coupon        `json:"coupon,omitempty"`
	Totals  store.CartTotals      `json:"totals"`
	Display map[string]string     `json:"display"`
}

func (h *CartHandler) snapshot() cartResponse {
	t := h.cart.Totals()
	return cartResponse{
		Items:  h.cart.List(),
		Coupon: h.cart.Coupon(),
		Totals: t,
		Display: map[string]string{
			"subtotal": h.currency.ConvertAndFormat(t.Subtotal),
			"discount": h.currency.ConvertAndFormat(t.Discount),
			"total":    h.currency.ConvertAndFormat(t.Total),
		},
	}
}

// Get godoc
// @Summary      Carrito con totales en moneda base y formateados en la moneda seleccionada
// @Tags         cart
// @Produce      json
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.snapshot())
}

// AddItem godoc
// @Summary      Agregar línea (fusiona ProductID+Variant)
// @Tags         cart
// @Accept       json
// @Produce      json
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in store.CartItemInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" {
		return validation(c, "productId es requerido")
	}
	id := h.cart.Add(in)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// UpdateItem cambia la cantidad; 0 o negativo elimina la línea.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if !h.cart.UpdateQuantity(c.Params("id"), in.Quantity) {
		return notFound(c, "línea no encontrada")
	}
	return c.JSON(h.snapshot())
}

// RemoveItem elimina la línea (idempotente).
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	h.cart.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear vacía el carrito.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.cart.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyCoupon valida el cupón contra el backend.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var in struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.cart.ApplyCoupon(c.UserContext(), in.Code); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.snapshot())
}

// RemoveCoupon quita el cupón aplicado.
func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	h.cart.RemoveCoupon()
	return c.SendStatus(fiber.StatusNoContent)
}
