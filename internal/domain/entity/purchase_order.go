package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	POStatusDraft             = "draft"
	POStatusPendingApproval   = "pending_approval"
	POStatusApproved          = "approved"
	POStatusSent              = "sent"
	POStatusPartiallyReceived = "partially_received"
	POStatusReceived          = "received"
	POStatusCancelled         = "cancelled"
)

// poTransitions aristas permitidas de la máquina de estados. Cancelar se resuelve aparte.
var poTransitions = map[string][]string{
	POStatusDraft:             {POStatusPendingApproval},
	POStatusPendingApproval:   {POStatusApproved},
	POStatusApproved:          {POStatusSent},
	POStatusSent:              {POStatusPartiallyReceived, POStatusReceived},
	POStatusPartiallyReceived: {POStatusPartiallyReceived, POStatusReceived},
}

// IsTerminalPOStatus indica si el estado ya no admite transiciones.
func IsTerminalPOStatus(status string) bool {
	return status == POStatusReceived || status == POStatusCancelled
}

// CanTransitionPO indica si la arista from → to es válida.
// cancelled es alcanzable desde cualquier estado no terminal.
func CanTransitionPO(from, to string) bool {
	if IsTerminalPOStatus(from) {
		return false
	}
	if to == POStatusCancelled {
		return true
	}
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// POLineItem línea de la orden. Total = Quantity × UnitPrice (redondeado a 2 decimales).
type POLineItem struct {
	ProductID        string          `json:"productId"`
	Name             string          `json:"name"`
	SKU              string          `json:"sku,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Total            decimal.Decimal `json:"total"`
	ReceivedQuantity int             `json:"receivedQuantity"`
}

// PurchaseOrder orden de compra al proveedor.
type PurchaseOrder struct {
	ID               string          `json:"id"`
	PONumber         string          `json:"poNumber"` // PO-{año}-{secuencia de 5 dígitos}
	VendorID         string          `json:"vendorId"`
	VendorName       string          `json:"vendorName"`
	LineItems        []POLineItem    `json:"lineItems"`
	Status           string          `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxRate          decimal.Decimal `json:"taxRate"` // fracción: 0.075 = 7.5%
	Tax              decimal.Decimal `json:"tax"`
	Shipping         decimal.Decimal `json:"shipping"`
	Total            decimal.Decimal `json:"total"`
	Notes            string          `json:"notes,omitempty"`
	ExpectedDelivery *time.Time      `json:"expectedDelivery,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	SubmittedAt      *time.Time      `json:"submittedAt,omitempty"`
	ApprovedAt       *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy       string          `json:"approvedBy,omitempty"`
	SentAt           *time.Time      `json:"sentAt,omitempty"`
	ReceivedAt       *time.Time      `json:"receivedAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason     string          `json:"cancelReason,omitempty"`
}

// FullyReceived indica si todas las líneas recibieron su cantidad pedida.
func (po PurchaseOrder) FullyReceived() bool {
	for _, li := range po.LineItems {
		if li.ReceivedQuantity < li.Quantity {
			return false
		}
	}
	return true
}
