package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/application/ports"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
	"github.com/jhoicas/channah-state/pkg/money"
)

type cartState struct {
	Items  []entity.CartLineItem `json:"items"`
	Coupon *entity.Coupon        `json:"coupon,omitempty"`
}

// repair lleva las cantidades a >= 1 y fusiona líneas repetidas de ProductID+Variant.
func (st *cartState) repair() {
	items := make([]entity.CartLineItem, 0, len(st.Items))
	for _, it := range st.Items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		merged := false
		for i := range items {
			if sameLine(items[i], it.ProductID, it.Variant) {
				items[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, it)
		}
	}
	st.Items = items
}

// CartItemInput datos para agregar una línea (sin ID).
type CartItemInput struct {
	ProductID string          `json:"productId"`
	Variant   string          `json:"variant"`
	VendorID  string          `json:"vendorId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// CartTotals totales derivados del carrito, en moneda base y redondeados a 2 decimales.
type CartTotals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// CartStore carrito del comprador. Fusiona líneas con el mismo ProductID+Variant.
type CartStore struct {
	*base[cartState]
	coupons ports.CouponValidator
}

// NewCartStore construye el store y lo siembra con el estado persistido.
// coupons puede ser nil si la app no aplica cupones.
func NewCartStore(ctx context.Context, repo repository.StateRepository, coupons ports.CouponValidator, opts Options) *CartStore {
	return &CartStore{
		base:    newBase(ctx, repo, KeyCart, opts, cartState{Items: []entity.CartLineItem{}}),
		coupons: coupons,
	}
}

func sameLine(item entity.CartLineItem, productID, variant string) bool {
	return item.ProductID == productID && item.Variant == variant
}

// Add agrega la línea o suma la cantidad si ya existe ProductID+Variant. Devuelve el ID de la línea.
// Una cantidad menor a 1 se toma como 1.
func (s *CartStore) Add(in CartItemInput) string {
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	var id string
	s.mutate(func(st *cartState) bool {
		for i := range st.Items {
			if sameLine(st.Items[i], in.ProductID, in.Variant) {
				st.Items[i].Quantity += qty
				id = st.Items[i].ID
				return true
			}
		}
		now := s.opts.now()
		id = newID(now)
		st.Items = append(st.Items, entity.CartLineItem{
			ID:        id,
			ProductID: in.ProductID,
			Variant:   in.Variant,
			VendorID:  in.VendorID,
			Name:      in.Name,
			Slug:      in.Slug,
			Price:     in.Price,
			Image:     in.Image,
			Quantity:  qty,
			AddedAt:   now,
		})
		return true
	})
	return id
}

// Remove elimina la línea. No-op si no existe.
func (s *CartStore) Remove(id string) {
	s.mutate(func(st *cartState) bool {
		for i := range st.Items {
			if st.Items[i].ID == id {
				st.Items = append(st.Items[:i], st.Items[i+1:]...)
				return true
			}
		}
		return false
	})
}

// UpdateQuantity fija la cantidad de una línea; quantity <= 0 elimina la línea.
// Devuelve false si la línea no existe.
func (s *CartStore) UpdateQuantity(id string, quantity int) bool {
	found := false
	s.mutate(func(st *cartState) bool {
		for i := range st.Items {
			if st.Items[i].ID != id {
				continue
			}
			found = true
			if quantity <= 0 {
				st.Items = append(st.Items[:i], st.Items[i+1:]...)
				return true
			}
			if st.Items[i].Quantity == quantity {
				return false
			}
			st.Items[i].Quantity = quantity
			return true
		}
		return false
	})
	return found
}

// Get devuelve la línea por ID.
func (s *CartStore) Get(id string) (entity.CartLineItem, bool) {
	var out entity.CartLineItem
	var ok bool
	s.read(func(st *cartState) {
		for _, it := range st.Items {
			if it.ID == id {
				out, ok = it, true
				return
			}
		}
	})
	return out, ok
}

// FindByProduct busca la línea de un producto+variante.
func (s *CartStore) FindByProduct(productID, variant string) (entity.CartLineItem, bool) {
	var out entity.CartLineItem
	var ok bool
	s.read(func(st *cartState) {
		for _, it := range st.Items {
			if sameLine(it, productID, variant) {
				out, ok = it, true
				return
			}
		}
	})
	return out, ok
}

// List devuelve una copia de las líneas en orden de inserción.
func (s *CartStore) List() []entity.CartLineItem {
	var out []entity.CartLineItem
	s.read(func(st *cartState) {
		out = append(make([]entity.CartLineItem, 0, len(st.Items)), st.Items...)
	})
	return out
}

// ByVendor agrupa las líneas por proveedor (checkout multi-vendedor).
func (s *CartStore) ByVendor() map[string][]entity.CartLineItem {
	out := make(map[string][]entity.CartLineItem)
	for _, it := range s.List() {
		out[it.VendorID] = append(out[it.VendorID], it)
	}
	return out
}

// Clear vacía el carrito y quita el cupón.
func (s *CartStore) Clear() {
	s.mutate(func(st *cartState) bool {
		if len(st.Items) == 0 && st.Coupon == nil {
			return false
		}
		st.Items = []entity.CartLineItem{}
		st.Coupon = nil
		return true
	})
}

// Coupon devuelve el cupón aplicado, si hay.
func (s *CartStore) Coupon() *entity.Coupon {
	var out *entity.Coupon
	s.read(func(st *cartState) {
		if st.Coupon != nil {
			c := *st.Coupon
			out = &c
		}
	})
	return out
}

// ApplyCoupon valida el código contra el backend y lo guarda. Un error de red o de validación
// se propaga al llamador y deja el carrito intacto.
func (s *CartStore) ApplyCoupon(ctx context.Context, code string) (*entity.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("cupón: %w", domain.ErrInvalidInput)
	}
	if s.coupons == nil {
		return nil, fmt.Errorf("cupón: validador no configurado")
	}
	subtotal := s.Totals().Subtotal
	coupon, err := s.coupons.ValidateCoupon(ctx, code, subtotal)
	if err != nil {
		return nil, fmt.Errorf("cupón %s: %w", code, err)
	}
	if coupon == nil {
		return nil, fmt.Errorf("cupón %s: %w", code, domain.ErrNotFound)
	}
	// la respuesta puede llegar tras una cancelación; no se aplica
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c := *coupon
	s.mutate(func(st *cartState) bool {
		st.Coupon = &c
		return true
	})
	return coupon, nil
}

// RemoveCoupon quita el cupón aplicado.
func (s *CartStore) RemoveCoupon() {
	s.mutate(func(st *cartState) bool {
		if st.Coupon == nil {
			return false
		}
		st.Coupon = nil
		return true
	})
}

// Totals calcula subtotal (suma de líneas redondeadas), descuento y total.
func (s *CartStore) Totals() CartTotals {
	var t CartTotals
	s.read(func(st *cartState) {
		lines := make([]decimal.Decimal, 0, len(st.Items))
		for _, it := range st.Items {
			t.ItemCount += it.Quantity
			lines = append(lines, it.LineTotal())
		}
		t.Subtotal = money.Sum(lines...)
		t.Discount = couponDiscount(st.Coupon, t.Subtotal)
		t.Total = t.Subtotal.Sub(t.Discount)
	})
	return t
}

// couponDiscount descuento aplicable; nunca supera el subtotal ni aplica bajo el mínimo.
func couponDiscount(c *entity.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil || subtotal.IsZero() {
		return decimal.Zero
	}
	if c.MinOrder != nil && subtotal.LessThan(*c.MinOrder) {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch c.DiscountType {
	case entity.DiscountPercent:
		d = money.Round2(subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)))
	case entity.DiscountFixed:
		d = money.Round2(c.Value)
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
