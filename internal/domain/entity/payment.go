package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment abono registrado contra una factura. Solo se agregan, nunca se modifican.
type Payment struct {
	ID          string
	OwnerID     string
	BusinessID  string
	InvoiceID   string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
}
