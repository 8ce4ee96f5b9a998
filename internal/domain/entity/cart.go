package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuento de cupón.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// CartLineItem línea del carrito. ProductID+Variant identifican la línea a efectos de fusión.
// Price está en moneda base.
type CartLineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Variant   string          `json:"variant,omitempty"`
	VendorID  string          `json:"vendorId,omitempty"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"` // siempre >= 1
	AddedAt   time.Time       `json:"addedAt"`
}

// LineTotal devuelve Price × Quantity sin redondear.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Coupon cupón validado por el backend y aplicado al carrito.
type Coupon struct {
	Code         string           `json:"code"`
	DiscountType string           `json:"discountType"` // percent | fixed
	Value        decimal.Decimal  `json:"value"`
	MinOrder     *decimal.Decimal `json:"minOrder,omitempty"`
}
