package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/application/currency"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// CurrencyHandler expone la moneda de visualización y la conversión.
type CurrencyHandler struct {
	currency *currency.Store
}

// NewCurrencyHandler construye el handler.
func NewCurrencyHandler(cur *currency.Store) *CurrencyHandler {
	return &CurrencyHandler{currency: cur}
}

// Get moneda seleccionada, catálogo y tabla de tasas.
func (h *CurrencyHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"selected":  h.currency.Selected(),
		"supported": entity.SupportedCurrencies,
		"base":      entity.BaseCurrency,
		"rates":     h.currency.Rates(),
	})
}

// Select cambia la moneda (elección explícita del usuario).
func (h *CurrencyHandler) Select(c *fiber.Ctx) error {
	var in struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.currency.SetCurrency(in.Code); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.currency.Selected())
}

// Convert GET /currency/convert?amount=100 → monto convertido y formateado.
func (h *CurrencyHandler) Convert(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return validation(c, "amount debe ser numérico")
	}
	return c.JSON(fiber.Map{
		"amount":    amount,
		"converted": h.currency.Convert(amount),
		"formatted": h.currency.ConvertAndFormat(amount),
		"currency":  h.currency.Selected().Code,
	})
}

// RefreshRates vuelve a pedir la tabla; si falla se conserva la anterior.
func (h *CurrencyHandler) RefreshRates(c *fiber.Ctx) error {
	if err := h.currency.FetchExchangeRates(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"rates": h.currency.Rates()})
}
