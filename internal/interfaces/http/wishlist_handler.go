package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// WishlistHandler expone la lista de deseos.
type WishlistHandler struct {
	wishlist *store.WishlistStore
	cart     *store.CartStore
}

// NewWishlistHandler construye el handler.
func NewWishlistHandler(wishlist *store.WishlistStore, cart *store.CartStore) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, cart: cart}
}

// List lista paginada.
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.Paginate(h.wishlist.List(), page(c)))
}

// Add agrega el producto; 200 si ya estaba, 201 si se agregó.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var in entity.WishlistItem
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" {
		return validation(c, "productId es requerido")
	}
	if h.wishlist.Add(in) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"productId": in.ProductID, "added": true})
	}
	return c.JSON(fiber.Map{"productId": in.ProductID, "added": false})
}

// Toggle agrega o quita; devuelve si quedó en la lista.
func (h *WishlistHandler) Toggle(c *fiber.Ctx) error {
	var in entity.WishlistItem
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" {
		return validation(c, "productId es requerido")
	}
	return c.JSON(fiber.Map{"productId": in.ProductID, "inWishlist": h.wishlist.Toggle(in)})
}

// Remove quita el producto (idempotente).
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	h.wishlist.Remove(c.Params("productId"))
	return c.SendStatus(fiber.StatusNoContent)
}

// MoveToCart pasa el producto al carrito.
func (h *WishlistHandler) MoveToCart(c *fiber.Ctx) error {
	if !h.wishlist.MoveToCart(c.Params("productId"), h.cart) {
		return notFound(c, "producto no está en la lista")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear vacía la lista.
func (h *WishlistHandler) Clear(c *fiber.Ctx) error {
	h.wishlist.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}
