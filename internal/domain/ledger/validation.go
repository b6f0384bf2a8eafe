// Package ledger contiene las reglas puras del ledger de facturación: validación de la
// factura, identidad determinística, cálculo de abonos y normalización del estado de pago.
// No tiene efectos secundarios; la persistencia vive en application/infrastructure.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/pkg/money"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// ItemInput línea sin validar. Los numéricos llegan como número JSON o string.
type ItemInput struct {
	Description string
	Quantity    any
	UnitPrice   any
	TaxRate     any
}

// InvoiceInput payload sin validar para crear una factura.
type InvoiceInput struct {
	BusinessID             string
	DocumentType           string
	Serie                  string
	Numero                 string
	CustomerName           string
	CustomerDocumentType   string
	CustomerDocumentNumber string
	IssueDate              string
	DueDate                string
	Items                  []ItemInput
}

// Draft factura validada y con totales calculados, lista para el motor del ledger.
type Draft struct {
	BusinessID             string
	DocumentType           sunat.DocumentType
	Serie                  string
	Numero                 string
	CustomerName           string
	CustomerDocumentType   sunat.IdentityDocType
	CustomerDocumentNumber string
	IssueDate              time.Time
	DueDate                *time.Time
	Currency               string
	Items                  []entity.InvoiceItem
	Subtotal               decimal.Decimal
	IGV                    decimal.Decimal
	Total                  decimal.Decimal
}

// ID identidad determinística del borrador.
func (d *Draft) ID() string {
	return InvoiceID(d.DocumentType, d.Serie, d.Numero)
}

// ValidateInvoice convierte el payload en un borrador completo o devuelve el primer error
// de validación (envuelve domain.ErrInvalidInput). Es una función pura.
func ValidateInvoice(in InvoiceInput) (*Draft, error) {
	businessID := strings.TrimSpace(in.BusinessID)
	if businessID == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	docType, ok := sunat.ParseDocumentType(in.DocumentType)
	if !ok {
		return nil, domain.Invalid("documentType debe ser FACTURA o BOLETA")
	}
	if strings.TrimSpace(in.Serie) == "" || strings.TrimSpace(in.Numero) == "" {
		return nil, domain.Invalid("serie y numero son obligatorios")
	}
	serie, ok := sunat.ParseSerie(docType, in.Serie)
	if !ok {
		return nil, domain.Invalid("serie inválida: %q (4 caracteres alfanuméricos que empiezan con %c)", in.Serie, docType.SeriePrefix())
	}
	numero, ok := sunat.ParseNumero(in.Numero)
	if !ok {
		return nil, domain.Invalid("numero inválido: %q (de 1 a 8 dígitos)", in.Numero)
	}
	customerName := strings.TrimSpace(in.CustomerName)
	if customerName == "" {
		return nil, domain.Invalid("customerName es obligatorio")
	}
	customerDocType, ok := sunat.ParseIdentityDocType(in.CustomerDocumentType)
	if !ok {
		return nil, domain.Invalid("customerDocumentType debe ser RUC, DNI u OTRO")
	}
	customerDocNumber := strings.TrimSpace(in.CustomerDocumentNumber)
	if customerDocNumber == "" {
		return nil, domain.Invalid("customerDocumentNumber es obligatorio")
	}
	// Solo clientes con RUC reciben FACTURA.
	if docType == sunat.DocumentFactura && customerDocType != sunat.IdentityRUC {
		return nil, domain.Invalid("una FACTURA requiere cliente con RUC")
	}

	if strings.TrimSpace(in.IssueDate) == "" {
		return nil, domain.Invalid("issueDate es obligatorio")
	}
	issueDate, err := ParseDate(in.IssueDate)
	if err != nil {
		return nil, domain.Invalid("issueDate inválido: %s", in.IssueDate)
	}
	var dueDate *time.Time
	if strings.TrimSpace(in.DueDate) != "" {
		d, err := ParseDate(in.DueDate)
		if err != nil {
			return nil, domain.Invalid("dueDate inválido: %s", in.DueDate)
		}
		if d.Before(issueDate) {
			return nil, domain.Invalid("dueDate no puede ser anterior a issueDate")
		}
		dueDate = &d
	}

	if len(in.Items) == 0 {
		return nil, domain.Invalid("items debe tener al menos una línea")
	}
	items := make([]entity.InvoiceItem, 0, len(in.Items))
	var subtotal, igv decimal.Decimal
	for i, raw := range in.Items {
		item, err := buildItem(i, raw)
		if err != nil {
			return nil, err
		}
		// Se suman los valores ya redondeados por línea, no se redondea la suma.
		subtotal = subtotal.Add(item.Subtotal)
		igv = igv.Add(item.IGV)
		items = append(items, item)
	}
	total := money.Round2(subtotal.Add(igv))
	if !money.WithinLimit(total) {
		return nil, domain.Invalid("el total de la factura excede el máximo permitido (%s)", money.MaxAmount.StringFixed(2))
	}

	return &Draft{
		BusinessID:             businessID,
		DocumentType:           docType,
		Serie:                  serie,
		Numero:                 numero,
		CustomerName:           customerName,
		CustomerDocumentType:   customerDocType,
		CustomerDocumentNumber: customerDocNumber,
		IssueDate:              issueDate,
		DueDate:                dueDate,
		Currency:               sunat.CurrencyPEN,
		Items:                  items,
		Subtotal:               money.Round2(subtotal),
		IGV:                    money.Round2(igv),
		Total:                  total,
	}, nil
}

func buildItem(i int, raw ItemInput) (entity.InvoiceItem, error) {
	pos := i + 1
	description := strings.TrimSpace(raw.Description)
	if description == "" {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: description es obligatorio", pos)
	}
	qty, err := money.Parse(raw.Quantity)
	if err != nil {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: quantity inválido (%v)", pos, err)
	}
	if !qty.GreaterThan(decimal.Zero) {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: quantity debe ser mayor a 0", pos)
	}
	price, err := money.Parse(raw.UnitPrice)
	if err != nil {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: unitPrice inválido (%v)", pos, err)
	}
	if price.IsNegative() {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: unitPrice no puede ser negativo", pos)
	}
	rawRate, err := money.Parse(raw.TaxRate)
	if err != nil {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: taxRate inválido (%v)", pos, err)
	}
	rate, err := money.NormalizeRate(rawRate)
	if err != nil {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: %v", pos, err)
	}

	sub := money.Round2(qty.Mul(price))
	tax := money.Round2(sub.Mul(rate))
	if !money.WithinLimit(sub.Add(tax)) {
		return entity.InvoiceItem{}, domain.Invalid("items[%d]: el total de la línea excede el máximo permitido (%s)", pos, money.MaxAmount.StringFixed(2))
	}
	return entity.InvoiceItem{
		Position:    pos,
		Description: description,
		Quantity:    qty,
		UnitPrice:   price,
		TaxRate:     rate,
		Subtotal:    sub,
		IGV:         tax,
		Total:       sub.Add(tax),
	}, nil
}

// ParseDate acepta YYYY-MM-DD o RFC 3339 y devuelve la fecha calendario (00:00 hora de Lima).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, sunat.Lima); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q", s)
	}
	y, m, d := t.In(sunat.Lima).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, sunat.Lima), nil
}
