package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/currency"
	"github.com/jhoicas/channah-state/internal/application/store"
)

// Roles con acceso a las rutas B2B (documentos, órdenes de compra, abastecimiento).
var b2bRoles = []string{"vendor", "admin"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Cart           *store.CartStore
	Wishlist       *store.WishlistStore
	Comparison     *store.ComparisonStore
	Documents      *store.DocumentStore
	PurchaseOrders *store.PurchaseOrderStore
	Sourcing       *store.SourcingStore
	Auth           *store.AuthStore
	Currency       *currency.Store
	Gateway        sessionGateway
	PDF            poRenderer
	// RateLimit formato ulule ("120-M"); vacío desactiva el límite.
	RateLimit string
}

// Router registra las rutas de la API local.
func Router(app *fiber.App, deps RouterDeps) error {
	api := app.Group("/api")
	if deps.RateLimit != "" {
		limit, err := RateLimit(deps.RateLimit)
		if err != nil {
			return err
		}
		api.Use(limit)
	}

	// Sesión (público)
	sessionHandler := NewSessionHandler(deps.Auth, deps.Gateway)
	api.Get("/session", sessionHandler.Get)
	api.Post("/session", sessionHandler.Login)
	api.Delete("/session", sessionHandler.Logout)
	api.Post("/session/refresh", sessionHandler.Refresh)

	// Moneda
	currencyHandler := NewCurrencyHandler(deps.Currency)
	api.Get("/currency", currencyHandler.Get)
	api.Put("/currency", currencyHandler.Select)
	api.Get("/currency/convert", currencyHandler.Convert)
	api.Post("/currency/rates/refresh", currencyHandler.RefreshRates)

	// Carrito
	cart := api.Group("/cart")
	cartHandler := NewCartHandler(deps.Cart, deps.Currency)
	cart.Get("/", cartHandler.Get)
	cart.Delete("/", cartHandler.Clear)
	cart.Post("/items", cartHandler.AddItem)
	cart.Patch("/items/:id", cartHandler.UpdateItem)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Post("/coupon", cartHandler.ApplyCoupon)
	cart.Delete("/coupon", cartHandler.RemoveCoupon)

	// Lista de deseos
	wishlist := api.Group("/wishlist")
	wishlistHandler := NewWishlistHandler(deps.Wishlist, deps.Cart)
	wishlist.Get("/", wishlistHandler.List)
	wishlist.Post("/", wishlistHandler.Add)
	wishlist.Delete("/", wishlistHandler.Clear)
	wishlist.Post("/toggle", wishlistHandler.Toggle)
	wishlist.Delete("/:productId", wishlistHandler.Remove)
	wishlist.Post("/:productId/move-to-cart", wishlistHandler.MoveToCart)

	// Comparador
	comparison := api.Group("/comparison")
	comparisonHandler := NewComparisonHandler(deps.Comparison)
	comparison.Get("/", comparisonHandler.List)
	comparison.Post("/", comparisonHandler.Add)
	comparison.Delete("/", comparisonHandler.Clear)
	comparison.Delete("/:id", comparisonHandler.Remove)

	// Rutas B2B (requieren sesión de proveedor o admin)
	guard := []fiber.Handler{RequireSession(deps.Auth), RequireRole(b2bRoles...)}

	documents := api.Group("/documents", guard...)
	documentHandler := NewDocumentHandler(deps.Documents)
	documents.Get("/", documentHandler.List)
	documents.Post("/", documentHandler.Create)
	documents.Post("/upload", documentHandler.Upload)
	documents.Get("/:id", documentHandler.Get)
	documents.Patch("/:id", documentHandler.Update)
	documents.Delete("/:id", documentHandler.Remove)
	documents.Post("/:id/verify", documentHandler.Verify)
	documents.Put("/:id/tags/:tag", documentHandler.AddTag)
	documents.Delete("/:id/tags/:tag", documentHandler.RemoveTag)

	folders := api.Group("/folders", guard...)
	folders.Get("/", documentHandler.ListFolders)
	folders.Post("/", documentHandler.CreateFolder)
	folders.Patch("/:id", documentHandler.RenameFolder)
	folders.Delete("/:id", documentHandler.DeleteFolder)
	folders.Get("/:id/documents", documentHandler.FolderDocuments)
	folders.Put("/:id/documents/:documentId", documentHandler.AddToFolder)
	folders.Delete("/:id/documents/:documentId", documentHandler.RemoveFromFolder)

	orders := api.Group("/purchase-orders", guard...)
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrders, deps.PDF)
	orders.Get("/", poHandler.List)
	orders.Post("/", poHandler.Create)
	orders.Get("/:id", poHandler.Get)
	orders.Patch("/:id", poHandler.Update)
	orders.Put("/:id/lines", poHandler.UpdateLines)
	orders.Delete("/:id", poHandler.Remove)
	orders.Post("/:id/submit", poHandler.Submit)
	orders.Post("/:id/approve", poHandler.Approve)
	orders.Post("/:id/send", poHandler.Send)
	orders.Post("/:id/receive", poHandler.Receive)
	orders.Post("/:id/cancel", poHandler.Cancel)
	orders.Get("/:id/pdf", poHandler.PDF)

	sourcing := api.Group("/sourcing", guard...)
	sourcingHandler := NewSourcingHandler(deps.Sourcing)
	sourcing.Get("/", sourcingHandler.List)
	sourcing.Post("/", sourcingHandler.Create)
	sourcing.Get("/vendors/:vendorId/bids", sourcingHandler.VendorBids)
	sourcing.Get("/:id", sourcingHandler.Get)
	sourcing.Patch("/:id", sourcingHandler.Update)
	sourcing.Delete("/:id", sourcingHandler.Remove)
	sourcing.Post("/:id/bids", sourcingHandler.AddBid)
	sourcing.Post("/:id/bids/:bidId/accept", sourcingHandler.AcceptBid)
	sourcing.Post("/:id/bids/:bidId/reject", sourcingHandler.RejectBid)
	sourcing.Post("/:id/bids/:bidId/award", sourcingHandler.Award)
	sourcing.Post("/:id/close", sourcingHandler.Close)
	return nil
}
