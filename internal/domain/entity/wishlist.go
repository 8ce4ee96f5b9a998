package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem producto guardado en la lista de deseos. ProductID es único en la colección.
type WishlistItem struct {
	ProductID      string           `json:"productId"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Image          string           `json:"image"`
	AddedAt        time.Time        `json:"addedAt"`
}
