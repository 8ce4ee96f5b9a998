package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de abastecimiento.
const (
	SourcingStatusOpen    = "open"
	SourcingStatusBidding = "bidding"
	SourcingStatusAwarded = "awarded"
	SourcingStatusClosed  = "closed"
)

// Estados de una oferta.
const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

// SourcingBid oferta de un proveedor. MOQ = cantidad mínima de pedido.
type SourcingBid struct {
	ID           string          `json:"id"`
	VendorID     string          `json:"vendorId"`
	VendorName   string          `json:"vendorName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	MOQ          int             `json:"moq"`
	LeadTimeDays int             `json:"leadTimeDays"`
	Notes        string          `json:"notes,omitempty"`
	Status       string          `json:"status"`
	SubmittedAt  time.Time       `json:"submittedAt"`
}

// SourcingRequest solicitud de cotización abierta a proveedores.
type SourcingRequest struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Category     string           `json:"category"`
	Quantity     int              `json:"quantity"`
	Unit         string           `json:"unit,omitempty"`
	TargetPrice  *decimal.Decimal `json:"targetPrice,omitempty"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Status       string           `json:"status"`
	Bids         []SourcingBid    `json:"bids"`
	AwardedTo    string           `json:"awardedTo,omitempty"`
	AwardedBidID string           `json:"awardedBidId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
}

// AcceptsBids indica si la solicitud admite nuevas ofertas.
func (r SourcingRequest) AcceptsBids() bool {
	return r.Status == SourcingStatusOpen || r.Status == SourcingStatusBidding
}
