package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/pkg/money"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// NormalizePaymentStatus deriva el estado de pago que se muestra. Se recalcula en cada
// lectura para que VENCIDO refleje la hora actual.
//
// Precedencia: saldo cancelado → PAGADO; PARCIAL almacenado se mantiene; vencido al
// final del día de dueDate (hora de Lima) → VENCIDO; estado almacenado válido; PENDIENTE.
func NormalizePaymentStatus(balance decimal.Decimal, stored entity.PaymentStatus, dueDate *time.Time, now time.Time) entity.PaymentStatus {
	if money.IsSettled(balance) {
		return entity.PaymentPagado
	}
	if stored == entity.PaymentParcial {
		return entity.PaymentParcial
	}
	if dueDate != nil && endOfDay(*dueDate).Before(now) {
		return entity.PaymentVencido
	}
	if stored.IsValid() {
		return stored
	}
	return entity.PaymentPendiente
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.In(sunat.Lima).Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), sunat.Lima)
}
