// Package pdf implementa la representación impresa de la factura/boleta electrónica SUNAT.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Negocio + dirección  │  Recuadro RUC / tipo / N°    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ADQUIRIENTE: Nombre + tipo y número de documento            │
//	│  FECHAS: emisión / vencimiento / moneda                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | V.Unit | IGV% | Importe         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Op. gravada / IGV / TOTAL / Pagado / Saldo         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER SUNAT: QR + estado CPE + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
)

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 153, Green: 27, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, inv *entity.Invoice, business *entity.Business) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(inv.DocumentType.Title()+" "+inv.FullNumber(), true).
		WithAuthor(business.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv, business))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(inv))
	m.AddRows(datesRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(inv.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(inv, business)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(inv *entity.Invoice, business *entity.Business) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(business.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(business.Address, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("R.U.C. "+business.RUC, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 1,
			}),
			text.New(inv.DocumentType.Title(), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 8,
			}),
			text.New(inv.FullNumber(), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 15,
			}),
		),
	)
}

func customerRow(inv *entity.Invoice) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ADQUIRIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s: %s", inv.CustomerDocumentType, inv.CustomerDocumentNumber),
				props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func datesRow(inv *entity.Invoice) core.Row {
	due := "—"
	if inv.DueDate != nil {
		due = inv.DueDate.Format("02/01/2006")
	}
	return row.New(8).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Fecha de emisión: %s   |   Fecha de vencimiento: %s   |   Moneda: %s",
				inv.IssueDate.Format("02/01/2006"), due, inv.Currency),
			props.Text{Size: 8, Top: 2},
		)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("V. Unitario", 2, align.Right),
		h("IGV%", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

func itemRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatSoles(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(it.TaxRate.Shift(2).String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatSoles(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(inv *entity.Invoice) core.Row {
	totals := []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Op. gravada:", inv.Subtotal, false},
		{"IGV:", inv.IGV, false},
		{"IMPORTE TOTAL:", inv.Total, true},
		{"Pagado:", inv.PaidAmount, false},
		{"Saldo:", inv.Balance, false},
	}
	labels := make([]core.Component, 0, len(totals))
	values := make([]core.Component, 0, len(totals))
	for i, t := range totals {
		lp := props.Text{Size: 9, Align: align.Right, Right: 2, Top: float64(i) * 5}
		vp := props.Text{Size: 9, Align: align.Right, Right: 1, Top: float64(i) * 5}
		if t.bold {
			lp.Style, lp.Color = fontstyle.Bold, colorPrimary
			vp.Style, vp.Color = fontstyle.Bold, colorPrimary
		}
		labels = append(labels, text.New(t.label, lp))
		values = append(values, text.New(formatSoles(t.value), vp))
	}
	return row.New(28).Add(
		col.New(5),
		col.New(4).Add(labels...),
		col.New(3).Add(values...),
	)
}

func footerRows(inv *entity.Invoice, business *entity.Business) []core.Row {
	status := "Sin envío a SUNAT"
	if inv.CPE != nil && inv.CPE.Status != "" {
		status = "Estado SUNAT: " + inv.CPE.Status
	}
	return []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(qrData(inv, business), props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Representación impresa de la "+inv.DocumentType.Title(), props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 4, Left: 3, Color: colorPrimary,
				}),
				text.New(status, props.Text{Size: 8, Top: 12, Left: 3, Color: colorGray}),
				text.New("Consulte su validez en www.sunat.gob.pe", props.Text{
					Size: 8, Top: 18, Left: 3, Color: colorGray,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// qrData contenido del QR según el formato SUNAT:
// RUC|TIPO|SERIE|NUMERO|IGV|TOTAL|FECHA|TIPO DOC ADQ|NUM DOC ADQ|
func qrData(inv *entity.Invoice, business *entity.Business) string {
	return strings.Join([]string{
		business.RUC,
		inv.DocumentType.Code(),
		inv.Serie,
		inv.Numero,
		inv.IGV.StringFixed(2),
		inv.Total.StringFixed(2),
		inv.IssueDate.Format("2006-01-02"),
		inv.CustomerDocumentType.Code(),
		inv.CustomerDocumentNumber,
	}, "|") + "|"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatSoles formatea un monto como "S/ 1,234.56".
func formatSoles(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := "S/ " + string(buf) + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
