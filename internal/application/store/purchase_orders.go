package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
	"github.com/jhoicas/channah-state/pkg/money"
)

type purchaseOrdersState struct {
	Orders []entity.PurchaseOrder `json:"orders"`
	// Sequence último consecutivo emitido por año ("2026" → 3).
	Sequence map[string]int `json:"sequence"`
}

func (st *purchaseOrdersState) repair() {
	if st.Orders == nil {
		st.Orders = []entity.PurchaseOrder{}
	}
	if st.Sequence == nil {
		st.Sequence = map[string]int{}
	}
}

// POLineInput línea de entrada; Total lo calcula el store.
type POLineInput struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PurchaseOrderInput datos para crear una orden en borrador.
type PurchaseOrderInput struct {
	VendorID         string          `json:"vendorId"`
	VendorName       string          `json:"vendorName"`
	LineItems        []POLineInput   `json:"lineItems"`
	TaxRate          decimal.Decimal `json:"taxRate"`
	Shipping         decimal.Decimal `json:"shipping"`
	Notes            string          `json:"notes"`
	ExpectedDelivery *time.Time      `json:"expectedDelivery,omitempty"`
}

// PurchaseOrderPatch campos de cabecera editables; nil = sin cambio.
type PurchaseOrderPatch struct {
	VendorName       *string          `json:"vendorName"`
	Notes            *string          `json:"notes"`
	ExpectedDelivery *time.Time       `json:"expectedDelivery"`
	TaxRate          *decimal.Decimal `json:"taxRate"`
	Shipping         *decimal.Decimal `json:"shipping"`
}

// PurchaseOrderStore órdenes de compra con numeración PO-{año}-{secuencia} y máquina de estados.
type PurchaseOrderStore struct {
	*base[purchaseOrdersState]
}

// NewPurchaseOrderStore construye el store y lo siembra con el estado persistido.
func NewPurchaseOrderStore(ctx context.Context, repo repository.StateRepository, opts Options) *PurchaseOrderStore {
	return &PurchaseOrderStore{base: newBase(ctx, repo, KeyPurchaseOrders, opts, purchaseOrdersState{
		Orders:   []entity.PurchaseOrder{},
		Sequence: map[string]int{},
	})}
}

func clonePO(po entity.PurchaseOrder) entity.PurchaseOrder {
	po.LineItems = append([]entity.POLineItem{}, po.LineItems...)
	for _, t := range []**time.Time{&po.ExpectedDelivery, &po.SubmittedAt, &po.ApprovedAt, &po.SentAt, &po.ReceivedAt, &po.CancelledAt} {
		if *t != nil {
			v := **t
			*t = &v
		}
	}
	return po
}

func buildLines(in []POLineInput) []entity.POLineItem {
	lines := make([]entity.POLineItem, 0, len(in))
	for _, l := range in {
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, entity.POLineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  qty,
			UnitPrice: l.UnitPrice,
			Total:     money.Round2(l.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))),
		})
	}
	return lines
}

// recalc subtotal = Σ líneas redondeadas; tax = round2(subtotal × tasa); total = subtotal + tax + envío.
func recalc(po *entity.PurchaseOrder) {
	totals := make([]decimal.Decimal, 0, len(po.LineItems))
	for _, li := range po.LineItems {
		totals = append(totals, li.Total)
	}
	po.Subtotal = money.Sum(totals...)
	po.Tax = money.Round2(po.Subtotal.Mul(po.TaxRate))
	po.Total = po.Subtotal.Add(po.Tax).Add(money.Round2(po.Shipping))
}

// nextSequence toma el mayor entre el contador persistido y los números ya emitidos,
// así un estado legado sin contador tampoco produce colisiones.
func nextSequence(st *purchaseOrdersState, year int) int {
	if st.Sequence == nil {
		st.Sequence = map[string]int{}
	}
	y := strconv.Itoa(year)
	last := st.Sequence[y]
	prefix := fmt.Sprintf("PO-%d-", year)
	for _, po := range st.Orders {
		if n, err := strconv.Atoi(strings.TrimPrefix(po.PONumber, prefix)); err == nil && strings.HasPrefix(po.PONumber, prefix) && n > last {
			last = n
		}
	}
	st.Sequence[y] = last + 1
	return last + 1
}

// Create crea la orden en borrador, le asigna número y devuelve una copia.
func (s *PurchaseOrderStore) Create(in PurchaseOrderInput) entity.PurchaseOrder {
	var out entity.PurchaseOrder
	s.mutate(func(st *purchaseOrdersState) bool {
		now := s.opts.now()
		seq := nextSequence(st, now.Year())
		po := entity.PurchaseOrder{
			ID:               newID(now),
			PONumber:         fmt.Sprintf("PO-%d-%05d", now.Year(), seq),
			VendorID:         in.VendorID,
			VendorName:       in.VendorName,
			LineItems:        buildLines(in.LineItems),
			Status:           entity.POStatusDraft,
			TaxRate:          in.TaxRate,
			Shipping:         in.Shipping,
			Notes:            in.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if in.ExpectedDelivery != nil {
			t := *in.ExpectedDelivery
			po.ExpectedDelivery = &t
		}
		recalc(&po)
		st.Orders = append(st.Orders, po)
		out = clonePO(po)
		return true
	})
	return out
}

func indexPO(orders []entity.PurchaseOrder, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove elimina la orden. No-op si no existe. El consecutivo no se reutiliza.
func (s *PurchaseOrderStore) Remove(id string) {
	s.mutate(func(st *purchaseOrdersState) bool {
		i := indexPO(st.Orders, id)
		if i < 0 {
			return false
		}
		st.Orders = append(st.Orders[:i], st.Orders[i+1:]...)
		return true
	})
}

// Update aplica el patch de cabecera y recalcula totales. Devuelve false si no existe.
func (s *PurchaseOrderStore) Update(id string, p PurchaseOrderPatch) bool {
	return s.mutate(func(st *purchaseOrdersState) bool {
		i := indexPO(st.Orders, id)
		if i < 0 {
			return false
		}
		po := &st.Orders[i]
		if p.VendorName != nil {
			po.VendorName = *p.VendorName
		}
		if p.Notes != nil {
			po.Notes = *p.Notes
		}
		if p.ExpectedDelivery != nil {
			t := *p.ExpectedDelivery
			po.ExpectedDelivery = &t
		}
		if p.TaxRate != nil {
			po.TaxRate = *p.TaxRate
		}
		if p.Shipping != nil {
			po.Shipping = *p.Shipping
		}
		recalc(po)
		po.UpdatedAt = s.opts.now()
		return true
	})
}

// UpdateLineItems reemplaza las líneas; solo se permite en borrador.
func (s *PurchaseOrderStore) UpdateLineItems(id string, lines []POLineInput) error {
	var err error
	s.mutate(func(st *purchaseOrdersState) bool {
		i := indexPO(st.Orders, id)
		if i < 0 {
			err = fmt.Errorf("orden %s: %w", id, domain.ErrNotFound)
			return false
		}
		po := &st.Orders[i]
		if po.Status != entity.POStatusDraft {
			err = fmt.Errorf("orden %s en estado %s, líneas editables solo en borrador: %w", po.PONumber, po.Status, domain.ErrInvalidTransition)
			return false
		}
		po.LineItems = buildLines(lines)
		recalc(po)
		po.UpdatedAt = s.opts.now()
		return true
	})
	return err
}

// transition valida la arista from → to y aplica fn. Una arista ilegal deja la orden
// intacta, se registra como advertencia y se devuelve ErrInvalidTransition.
func (s *PurchaseOrderStore) transition(id, to string, fn func(po *entity.PurchaseOrder, now time.Time) error) error {
	return s.transitionTo(id, func(entity.PurchaseOrder) string { return to }, fn)
}

// transitionTo como transition pero con el destino calculado a partir de la orden actual.
func (s *PurchaseOrderStore) transitionTo(id string, target func(entity.PurchaseOrder) string, fn func(po *entity.PurchaseOrder, now time.Time) error) error {
	var err error
	s.mutate(func(st *purchaseOrdersState) bool {
		i := indexPO(st.Orders, id)
		if i < 0 {
			err = fmt.Errorf("orden %s: %w", id, domain.ErrNotFound)
			return false
		}
		po := &st.Orders[i]
		to := target(*po)
		if !entity.CanTransitionPO(po.Status, to) {
			err = fmt.Errorf("orden %s: %s → %s: %w", po.PONumber, po.Status, to, domain.ErrInvalidTransition)
			s.log.Warn().Str("po", po.PONumber).Str("from", po.Status).Str("to", to).Msg("transición rechazada")
			return false
		}
		next := clonePO(*po)
		now := s.opts.now()
		if ferr := fn(&next, now); ferr != nil {
			err = ferr
			return false
		}
		next.UpdatedAt = now
		*po = next
		return true
	})
	return err
}

// Submit envía el borrador a aprobación.
func (s *PurchaseOrderStore) Submit(id string) error {
	return s.transition(id, entity.POStatusPendingApproval, func(po *entity.PurchaseOrder, now time.Time) error {
		if len(po.LineItems) == 0 {
			return fmt.Errorf("orden %s sin líneas: %w", po.PONumber, domain.ErrInvalidInput)
		}
		po.Status = entity.POStatusPendingApproval
		po.SubmittedAt = &now
		return nil
	})
}

// Approve aprueba la orden y registra quién la aprobó.
func (s *PurchaseOrderStore) Approve(id, approver string) error {
	return s.transition(id, entity.POStatusApproved, func(po *entity.PurchaseOrder, now time.Time) error {
		po.Status = entity.POStatusApproved
		po.ApprovedAt = &now
		po.ApprovedBy = approver
		return nil
	})
}

// Send marca la orden como enviada al proveedor.
func (s *PurchaseOrderStore) Send(id string) error {
	return s.transition(id, entity.POStatusSent, func(po *entity.PurchaseOrder, now time.Time) error {
		po.Status = entity.POStatusSent
		po.SentAt = &now
		return nil
	})
}

// Receive registra cantidades recibidas por ProductID (acotadas a lo pedido).
// received vacío recibe todo lo pendiente. Queda received si todas las líneas se completan,
// si no partially_received.
func (s *PurchaseOrderStore) Receive(id string, received map[string]int) error {
	target := func(po entity.PurchaseOrder) string { return previewReceipt(po, received) }
	return s.transitionTo(id, target, func(po *entity.PurchaseOrder, now time.Time) error {
		if !applyReceipt(po, received) {
			return fmt.Errorf("orden %s: nada que recibir: %w", po.PONumber, domain.ErrInvalidInput)
		}
		if po.FullyReceived() {
			po.Status = entity.POStatusReceived
			po.ReceivedAt = &now
		} else {
			po.Status = entity.POStatusPartiallyReceived
		}
		return nil
	})
}

// previewReceipt calcula el estado destino sin mutar la orden.
func previewReceipt(po entity.PurchaseOrder, received map[string]int) string {
	cp := clonePO(po)
	applyReceipt(&cp, received)
	if cp.FullyReceived() {
		return entity.POStatusReceived
	}
	return entity.POStatusPartiallyReceived
}

func applyReceipt(po *entity.PurchaseOrder, received map[string]int) bool {
	changed := false
	for i := range po.LineItems {
		li := &po.LineItems[i]
		pending := li.Quantity - li.ReceivedQuantity
		if pending <= 0 {
			continue
		}
		qty := pending
		if len(received) > 0 {
			qty = received[li.ProductID]
			if qty > pending {
				qty = pending
			}
		}
		if qty > 0 {
			li.ReceivedQuantity += qty
			changed = true
		}
	}
	return changed
}

// Cancel cancela la orden desde cualquier estado no terminal.
func (s *PurchaseOrderStore) Cancel(id, reason string) error {
	return s.transition(id, entity.POStatusCancelled, func(po *entity.PurchaseOrder, now time.Time) error {
		po.Status = entity.POStatusCancelled
		po.CancelledAt = &now
		po.CancelReason = reason
		return nil
	})
}

// Get devuelve una copia de la orden.
func (s *PurchaseOrderStore) Get(id string) (entity.PurchaseOrder, bool) {
	var out entity.PurchaseOrder
	ok := false
	s.read(func(st *purchaseOrdersState) {
		if i := indexPO(st.Orders, id); i >= 0 {
			out, ok = clonePO(st.Orders[i]), true
		}
	})
	return out, ok
}

func (s *PurchaseOrderStore) filter(keep func(entity.PurchaseOrder) bool) []entity.PurchaseOrder {
	out := []entity.PurchaseOrder{}
	s.read(func(st *purchaseOrdersState) {
		for _, po := range st.Orders {
			if keep(po) {
				out = append(out, clonePO(po))
			}
		}
	})
	return out
}

// List copia de todas las órdenes en orden de creación.
func (s *PurchaseOrderStore) List() []entity.PurchaseOrder {
	return s.filter(func(entity.PurchaseOrder) bool { return true })
}

// ByStatus órdenes en el estado dado.
func (s *PurchaseOrderStore) ByStatus(status string) []entity.PurchaseOrder {
	return s.filter(func(po entity.PurchaseOrder) bool { return po.Status == status })
}

// ByVendor órdenes de un proveedor.
func (s *PurchaseOrderStore) ByVendor(vendorID string) []entity.PurchaseOrder {
	return s.filter(func(po entity.PurchaseOrder) bool { return po.VendorID == vendorID })
}

// PendingApproval órdenes esperando aprobación.
func (s *PurchaseOrderStore) PendingApproval() []entity.PurchaseOrder {
	return s.ByStatus(entity.POStatusPendingApproval)
}

// Search busca en número, proveedor, notas y nombres de línea.
func (s *PurchaseOrderStore) Search(text string) []entity.PurchaseOrder {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return s.List()
	}
	return s.filter(func(po entity.PurchaseOrder) bool {
		for _, f := range []string{po.PONumber, po.VendorName, po.Notes} {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		for _, li := range po.LineItems {
			if strings.Contains(strings.ToLower(li.Name), q) || strings.Contains(strings.ToLower(li.SKU), q) {
				return true
			}
		}
		return false
	})
}
