// Package pdf exporta órdenes de compra a PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Orden de compra + N° PO  │  Estado + Fecha          │
//	│  PROVEEDOR: nombre + id + entrega esperada                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | SKU | P.Unit | Total               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Envío / TOTAL                │
//	│  FOOTER: notas + QR con el número de orden                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/pkg/money"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PurchaseOrderRenderer genera el PDF de una orden de compra con Maroto v2.
type PurchaseOrderRenderer struct {
	// Company nombre que firma el documento.
	Company string
}

// NewPurchaseOrderRenderer construye el renderer.
func NewPurchaseOrderRenderer(company string) *PurchaseOrderRenderer {
	return &PurchaseOrderRenderer{Company: company}
}

// Render genera el PDF y devuelve sus bytes.
func (r *PurchaseOrderRenderer) Render(po entity.PurchaseOrder) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Purchase Order "+po.PONumber, true).
		WithAuthor(nonEmpty(r.Company, "Channah"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(po))
	m.AddRows(vendorRow(po))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(lineRows(po.LineItems)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(po))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(po))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar orden %s: %w", po.PONumber, err)
	}
	return doc.GetBytes(), nil
}

func headerRow(po entity.PurchaseOrder) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("PURCHASE ORDER", props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(po.PONumber, props.Text{Style: fontstyle.Bold, Size: 11, Top: 9}),
		),
		col.New(5).Add(
			text.New("Status: "+po.Status, props.Text{Size: 9, Align: align.Right, Top: 2}),
			text.New("Date: "+po.CreatedAt.Format("2006-01-02"), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func vendorRow(po entity.PurchaseOrder) core.Row {
	delivery := "-"
	if po.ExpectedDelivery != nil {
		delivery = po.ExpectedDelivery.Format("2006-01-02")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("VENDOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(po.VendorName, po.VendorID), props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(fmt.Sprintf("Vendor ID: %s   |   Expected delivery: %s", po.VendorID, delivery),
				props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Product", 5, align.Left),
		h("SKU", 2, align.Left),
		h("Unit price", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func lineRows(items []entity.POLineItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, li := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", li.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(li.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(li.SKU, "-"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(usd(li.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(usd(li.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(po entity.PurchaseOrder) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 0),
			label("Tax ("+po.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%):", 5),
			label("Shipping:", 10),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 16, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(usd(po.Subtotal), 0),
			value(usd(po.Tax), 5),
			value(usd(po.Shipping), 10),
			text.New(usd(po.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 16, Color: colorPrimary}),
		),
	)
}

func footerRow(po entity.PurchaseOrder) core.Row {
	return row.New(35).Add(
		col.New(8).Add(
			text.New("NOTES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(po.Notes, "-"), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
		col.New(4).Add(code.NewQr(po.PONumber, props.Rect{Percent: 90, Center: true})),
	)
}

func usd(d decimal.Decimal) string {
	return money.Format(d, "$", "en-US")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
