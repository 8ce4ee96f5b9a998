package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// couponStub validador de cupones en memoria.
type couponStub struct {
	coupon *entity.Coupon
	err    error
	seen   decimal.Decimal
}

func (s *couponStub) ValidateCoupon(_ context.Context, _ string, subtotal decimal.Decimal) (*entity.Coupon, error) {
	s.seen = subtotal
	return s.coupon, s.err
}

func newCart(t *testing.T, coupons *couponStub) *store.CartStore {
	t.Helper()
	if coupons == nil {
		return store.NewCartStore(context.Background(), newRepo(), nil, testOpts())
	}
	return store.NewCartStore(context.Background(), newRepo(), coupons, testOpts())
}

func TestCart_MismaVarianteFusionaCantidades(t *testing.T) {
	cart := newCart(t, nil)
	in := store.CartItemInput{ProductID: "p1", Variant: "XL", Name: "Kente shirt", Price: decimal.RequireFromString("25.00")}

	in.Quantity = 2
	first := cart.Add(in)
	in.Quantity = 3
	second := cart.Add(in)

	items := cart.List()
	require.Len(t, items, 1, "no debe agregarse una segunda línea")
	assert.Equal(t, first, second)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCart_OtraVarianteEsOtraLinea(t *testing.T) {
	cart := newCart(t, nil)
	cart.Add(store.CartItemInput{ProductID: "p1", Variant: "M", Quantity: 1})
	cart.Add(store.CartItemInput{ProductID: "p1", Variant: "L", Quantity: 1})
	assert.Len(t, cart.List(), 2)
}

func TestCart_CantidadMenorAUnoSeTomaComoUno(t *testing.T) {
	cart := newCart(t, nil)
	id := cart.Add(store.CartItemInput{ProductID: "p1", Quantity: 0})
	item, ok := cart.Get(id)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_UpdateQuantityCeroEliminaLaLinea(t *testing.T) {
	cart := newCart(t, nil)
	id := cart.Add(store.CartItemInput{ProductID: "p1", Quantity: 2})

	assert.True(t, cart.UpdateQuantity(id, 0))
	assert.Empty(t, cart.List())
	assert.False(t, cart.UpdateQuantity(id, 4), "línea inexistente")
}

func TestCart_RemoveEsIdempotente(t *testing.T) {
	cart := newCart(t, nil)
	keep := cart.Add(store.CartItemInput{ProductID: "p1", Quantity: 1})
	drop := cart.Add(store.CartItemInput{ProductID: "p2", Quantity: 1})

	cart.Remove(drop)
	once := cart.List()
	cart.Remove(drop)
	assert.Equal(t, once, cart.List())
	require.Len(t, once, 1)
	assert.Equal(t, keep, once[0].ID)
}

func TestCart_TotalesSumanLineasRedondeadas(t *testing.T) {
	cart := newCart(t, nil)
	cart.Add(store.CartItemInput{ProductID: "p1", Price: decimal.RequireFromString("0.335"), Quantity: 1})
	cart.Add(store.CartItemInput{ProductID: "p2", Price: decimal.RequireFromString("0.335"), Quantity: 1})

	totals := cart.Totals()
	// cada línea 0.335 → 0.34; la suma de líneas redondeadas es 0.68 (no 0.67)
	assert.Equal(t, "0.68", totals.Subtotal.StringFixed(2))
	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, "0.68", totals.Total.StringFixed(2))
}

func TestCart_ApplyCouponPorcentaje(t *testing.T) {
	stub := &couponStub{coupon: &entity.Coupon{Code: "SAVE10", DiscountType: entity.DiscountPercent, Value: decimal.NewFromInt(10)}}
	cart := newCart(t, stub)
	cart.Add(store.CartItemInput{ProductID: "p1", Price: decimal.RequireFromString("40.00"), Quantity: 2})

	_, err := cart.ApplyCoupon(context.Background(), " SAVE10 ")
	require.NoError(t, err)

	totals := cart.Totals()
	assert.Equal(t, "80.00", stub.seen.StringFixed(2), "el validador recibe el subtotal actual")
	assert.Equal(t, "8.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "72.00", totals.Total.StringFixed(2))
}

func TestCart_CuponFijoNoSuperaElSubtotalYRespetaMinimo(t *testing.T) {
	min := decimal.NewFromInt(50)
	stub := &couponStub{coupon: &entity.Coupon{Code: "BIG", DiscountType: entity.DiscountFixed, Value: decimal.NewFromInt(500), MinOrder: &min}}
	cart := newCart(t, stub)
	id := cart.Add(store.CartItemInput{ProductID: "p1", Price: decimal.NewFromInt(30), Quantity: 1})

	_, err := cart.ApplyCoupon(context.Background(), "BIG")
	require.NoError(t, err)
	assert.True(t, cart.Totals().Discount.IsZero(), "bajo el mínimo no aplica")

	cart.UpdateQuantity(id, 2)
	totals := cart.Totals()
	assert.Equal(t, "60.00", totals.Discount.StringFixed(2), "acotado al subtotal")
	assert.True(t, totals.Total.IsZero())
}

func TestCart_ErrorDelValidadorSePropagaYNoCambiaNada(t *testing.T) {
	stub := &couponStub{err: domain.ErrTransient}
	cart := newCart(t, stub)
	cart.Add(store.CartItemInput{ProductID: "p1", Price: decimal.NewFromInt(30), Quantity: 1})

	_, err := cart.ApplyCoupon(context.Background(), "SAVE10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransient))
	assert.Nil(t, cart.Coupon())
}

func TestCart_RespuestaTrasCancelacionSeDescarta(t *testing.T) {
	stub := &couponStub{coupon: &entity.Coupon{Code: "X", DiscountType: entity.DiscountFixed, Value: decimal.NewFromInt(1)}}
	cart := newCart(t, stub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cart.ApplyCoupon(ctx, "X")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, cart.Coupon())
}

func TestCart_CodigoVacioEsEntradaInvalida(t *testing.T) {
	cart := newCart(t, &couponStub{})
	_, err := cart.ApplyCoupon(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCart_ClearQuitaLineasYCupon(t *testing.T) {
	stub := &couponStub{coupon: &entity.Coupon{Code: "X", DiscountType: entity.DiscountFixed, Value: decimal.NewFromInt(1)}}
	cart := newCart(t, stub)
	cart.Add(store.CartItemInput{ProductID: "p1", Price: decimal.NewFromInt(5), Quantity: 1})
	_, err := cart.ApplyCoupon(context.Background(), "X")
	require.NoError(t, err)

	cart.Clear()
	assert.Empty(t, cart.List())
	assert.Nil(t, cart.Coupon())
}

func TestCart_ByVendorAgrupa(t *testing.T) {
	cart := newCart(t, nil)
	cart.Add(store.CartItemInput{ProductID: "p1", VendorID: "v1", Quantity: 1})
	cart.Add(store.CartItemInput{ProductID: "p2", VendorID: "v2", Quantity: 1})
	cart.Add(store.CartItemInput{ProductID: "p3", VendorID: "v1", Quantity: 1})

	groups := cart.ByVendor()
	assert.Len(t, groups["v1"], 2)
	assert.Len(t, groups["v2"], 1)
}
