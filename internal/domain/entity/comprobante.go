package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comprobante proyección legada de la factura para el modelo de lectura anterior.
// Se escribe una sola vez junto con la factura; la fuente de verdad es Invoice.
type Comprobante struct {
	ID             string
	OwnerID        string
	BusinessID     string
	InvoiceID      string
	Tipo           string // FACTURA | BOLETA
	Serie          string
	Numero         string
	ClienteNombre  string
	ClienteTipoDoc string
	ClienteNumDoc  string
	FechaEmision   time.Time
	Moneda         string
	Total          decimal.Decimal
	Estado         string
	CreatedAt      time.Time
}
