package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// PaymentStatus estado de cobranza de la factura.
type PaymentStatus string

const (
	PaymentPendiente PaymentStatus = "PENDIENTE"
	PaymentParcial   PaymentStatus = "PARCIAL"
	PaymentPagado    PaymentStatus = "PAGADO"
	PaymentVencido   PaymentStatus = "VENCIDO"
)

// IsValid informa si el estado es uno de los cuatro reconocidos.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPendiente, PaymentParcial, PaymentPagado, PaymentVencido:
		return true
	}
	return false
}

// Estados de ciclo de vida del comprobante.
const (
	InvoiceStatusEmitido = "EMITIDO"
	InvoiceStatusAnulado = "ANULADO"
)

// Estados CPE conocidos. El worker fiscal puede escribir otros.
const (
	CPEStatusPendiente = "PENDIENTE"
	CPEStatusEnviado   = "ENVIADO"
	CPEStatusAceptado  = "ACEPTADO"
	CPEStatusRechazado = "RECHAZADO"
	CPEStatusError     = "ERROR"
)

// CPERecord estado de emisión electrónica para un ambiente (lo actualiza el worker fiscal).
type CPERecord struct {
	Status      string     `json:"status"`
	Provider    string     `json:"provider,omitempty"`
	Ticket      string     `json:"ticket,omitempty"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
	Error       string     `json:"error,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Invoice representa una factura o boleta del ledger.
// ID = hash determinístico de (documentType, serie, numero); ver ledger.InvoiceID.
type Invoice struct {
	ID                     string
	OwnerID                string
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
	Items                  []InvoiceItem
	Subtotal               decimal.Decimal
	IGV                    decimal.Decimal
	Total                  decimal.Decimal
	PaidAmount             decimal.Decimal
	Balance                decimal.Decimal
	PaymentStatus          PaymentStatus
	Status                 string
	CPE                    *CPERecord // ambiente producción
	CPEBeta                *CPERecord // ambiente beta (pruebas)
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// InvoiceItem línea de la factura. Inmutable después de crearse.
type InvoiceItem struct {
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // fracción 0–1
	Subtotal    decimal.Decimal
	IGV         decimal.Decimal
	Total       decimal.Decimal
}

// FullNumber serie-numero, p. ej. F001-123.
func (inv *Invoice) FullNumber() string {
	return inv.Serie + "-" + inv.Numero
}
