package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

func poInput() store.PurchaseOrderInput {
	return store.PurchaseOrderInput{
		VendorID:   "v1",
		VendorName: "Accra Textiles",
		LineItems: []store.POLineInput{
			{ProductID: "kente", Name: "Kente roll", Quantity: 10, UnitPrice: decimal.RequireFromString("12.345")},
			{ProductID: "dye", Name: "Indigo dye", Quantity: 3, UnitPrice: decimal.RequireFromString("4.50")},
		},
		TaxRate:  decimal.RequireFromString("0.075"),
		Shipping: decimal.RequireFromString("20"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Numeración y totales
// ──────────────────────────────────────────────────────────────────────────────

func TestPO_NumeracionConsecutivaPorAnio(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())

	var numbers []string
	for i := 0; i < 3; i++ {
		numbers = append(numbers, pos.Create(poInput()).PONumber)
	}
	assert.Equal(t, []string{"PO-2026-00001", "PO-2026-00002", "PO-2026-00003"}, numbers)
}

func TestPO_ConsecutivoSobreviveRecargaYBorrado(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	first := store.NewPurchaseOrderStore(ctx, repo, testOpts())
	first.Create(poInput())
	last := first.Create(poInput())
	first.Remove(last.ID)

	reloaded := store.NewPurchaseOrderStore(ctx, repo, testOpts())
	assert.Equal(t, "PO-2026-00003", reloaded.Create(poInput()).PONumber, "un número emitido no se reutiliza")
}

func TestPO_TotalesRedondeadosPorLinea(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	po := pos.Create(poInput())

	require.Len(t, po.LineItems, 2)
	assert.Equal(t, "123.45", po.LineItems[0].Total.StringFixed(2))
	assert.Equal(t, "13.50", po.LineItems[1].Total.StringFixed(2))
	assert.Equal(t, "136.95", po.Subtotal.StringFixed(2))
	// 136.95 × 0.075 = 10.27125 → 10.27
	assert.Equal(t, "10.27", po.Tax.StringFixed(2))
	assert.Equal(t, "167.22", po.Total.StringFixed(2))
	assert.Equal(t, entity.POStatusDraft, po.Status)
}

func TestPO_UpdateRecalculaTotales(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	po := pos.Create(poInput())

	shipping := decimal.Zero
	rate := decimal.Zero
	require.True(t, pos.Update(po.ID, store.PurchaseOrderPatch{Shipping: &shipping, TaxRate: &rate}))

	got, _ := pos.Get(po.ID)
	assert.Equal(t, "136.95", got.Total.StringFixed(2))
	assert.False(t, pos.Update("no-existe", store.PurchaseOrderPatch{}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestPO_FlujoCompleto(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID

	require.NoError(t, pos.Submit(id))
	assert.Len(t, pos.PendingApproval(), 1)
	require.NoError(t, pos.Approve(id, "admin-1"))
	require.NoError(t, pos.Send(id))
	require.NoError(t, pos.Receive(id, nil))

	po, _ := pos.Get(id)
	assert.Equal(t, entity.POStatusReceived, po.Status)
	assert.Equal(t, "admin-1", po.ApprovedBy)
	for _, ts := range []*time.Time{po.SubmittedAt, po.ApprovedAt, po.SentAt, po.ReceivedAt} {
		require.NotNil(t, ts)
	}
	assert.True(t, po.FullyReceived())
}

func TestPO_TransicionIlegalNoCambiaNada(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID
	before, _ := pos.Get(id)

	err := pos.Approve(id, "admin-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	after, _ := pos.Get(id)
	assert.Equal(t, before, after)
}

func TestPO_SubmitSinLineasFalla(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	in := poInput()
	in.LineItems = nil
	id := pos.Create(in).ID

	assert.ErrorIs(t, pos.Submit(id), domain.ErrInvalidInput)
	po, _ := pos.Get(id)
	assert.Equal(t, entity.POStatusDraft, po.Status)
}

func TestPO_RecepcionParcial(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID
	require.NoError(t, pos.Submit(id))
	require.NoError(t, pos.Approve(id, "a"))
	require.NoError(t, pos.Send(id))

	require.NoError(t, pos.Receive(id, map[string]int{"kente": 4}))
	po, _ := pos.Get(id)
	assert.Equal(t, entity.POStatusPartiallyReceived, po.Status)
	assert.Equal(t, 4, po.LineItems[0].ReceivedQuantity)
	assert.Nil(t, po.ReceivedAt)

	// lo recibido se acota a lo pedido
	require.NoError(t, pos.Receive(id, map[string]int{"kente": 50, "dye": 3}))
	po, _ = pos.Get(id)
	assert.Equal(t, entity.POStatusReceived, po.Status)
	assert.Equal(t, 10, po.LineItems[0].ReceivedQuantity)
	require.NotNil(t, po.ReceivedAt)
}

func TestPO_RecepcionSinCambiosEsEntradaInvalida(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID
	require.NoError(t, pos.Submit(id))
	require.NoError(t, pos.Approve(id, "a"))
	require.NoError(t, pos.Send(id))

	assert.ErrorIs(t, pos.Receive(id, map[string]int{"otro": 5}), domain.ErrInvalidInput)
	po, _ := pos.Get(id)
	assert.Equal(t, entity.POStatusSent, po.Status)
}

func TestPO_CancelarDesdeTerminalFalla(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID

	require.NoError(t, pos.Cancel(id, "proveedor sin stock"))
	po, _ := pos.Get(id)
	assert.Equal(t, entity.POStatusCancelled, po.Status)
	assert.Equal(t, "proveedor sin stock", po.CancelReason)
	require.NotNil(t, po.CancelledAt)

	assert.ErrorIs(t, pos.Cancel(id, "otra vez"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, pos.Submit(id), domain.ErrInvalidTransition)
}

func TestPO_LineasEditablesSoloEnBorrador(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	id := pos.Create(poInput()).ID
	lines := []store.POLineInput{{ProductID: "x", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}}

	require.NoError(t, pos.UpdateLineItems(id, lines))
	po, _ := pos.Get(id)
	assert.Equal(t, "10.00", po.Subtotal.StringFixed(2))

	require.NoError(t, pos.Submit(id))
	assert.ErrorIs(t, pos.UpdateLineItems(id, lines), domain.ErrInvalidTransition)
	assert.ErrorIs(t, pos.UpdateLineItems("no-existe", lines), domain.ErrNotFound)
}

func TestPO_TransicionSobreInexistente(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	assert.ErrorIs(t, pos.Send("no-existe"), domain.ErrNotFound)
}

func TestPO_Consultas(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	pos.Create(poInput())
	in := poInput()
	in.VendorID, in.VendorName = "v2", "Lagos Leather"
	other := pos.Create(in)

	assert.Len(t, pos.ByVendor("v2"), 1)
	assert.Len(t, pos.ByStatus(entity.POStatusDraft), 2)
	assert.Len(t, pos.Search("lagos"), 1)
	assert.Len(t, pos.Search("indigo"), 2)
	assert.Len(t, pos.Search(other.PONumber), 1)
}

func TestPO_CreateCopiaLaFechaDeEntrega(t *testing.T) {
	pos := store.NewPurchaseOrderStore(context.Background(), newRepo(), testOpts())
	delivery := testNow.Add(10 * 24 * time.Hour)
	in := poInput()
	in.ExpectedDelivery = &delivery

	po := pos.Create(in)
	delivery = delivery.Add(365 * 24 * time.Hour)

	got, ok := pos.Get(po.ID)
	require.True(t, ok)
	require.NotNil(t, got.ExpectedDelivery)
	assert.True(t, got.ExpectedDelivery.Equal(testNow.Add(10*24*time.Hour)))
}
