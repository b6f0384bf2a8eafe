package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/pkg/money"
)

// Settlement nuevos campos de saldo de la factura tras un abono.
type Settlement struct {
	PaidAmount    decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus entity.PaymentStatus
}

// ApplyAmount calcula el efecto de un abono sobre el saldo leído dentro de la transacción.
// Devuelve también el monto a registrar (redondeado a céntimos).
// Invariante de salida: Balance == round2(Total - PaidAmount) y Balance >= 0.
func ApplyAmount(inv *entity.Invoice, amount decimal.Decimal) (decimal.Decimal, Settlement, error) {
	recorded := money.Round2(amount)
	if !recorded.GreaterThan(decimal.Zero) {
		return decimal.Zero, Settlement{}, domain.Invalid("amount debe ser mayor a 0")
	}
	if amount.GreaterThan(inv.Balance.Add(money.Epsilon)) {
		return decimal.Zero, Settlement{}, fmt.Errorf("%w: monto %s, saldo %s",
			domain.ErrInvalidAmount, recorded.StringFixed(2), inv.Balance.StringFixed(2))
	}

	paid := money.Round2(inv.PaidAmount.Add(recorded))
	balance := money.NonNegative(money.Round2(inv.Total.Sub(paid)))
	if money.IsSettled(balance) {
		return recorded, settled(inv.Total), nil
	}
	return recorded, Settlement{
		PaidAmount:    paid,
		Balance:       balance,
		PaymentStatus: entity.PaymentParcial,
	}, nil
}

// SettleInFull calcula la cancelación total. needsPayment es false cuando el saldo ya está
// cancelado: en ese caso solo se normalizan los campos, sin registrar un nuevo abono.
func SettleInFull(inv *entity.Invoice) (amount decimal.Decimal, needsPayment bool, s Settlement) {
	if money.IsSettled(inv.Balance) {
		return decimal.Zero, false, settled(inv.Total)
	}
	return money.Round2(inv.Balance), true, settled(inv.Total)
}

func settled(total decimal.Decimal) Settlement {
	return Settlement{
		PaidAmount:    money.Round2(total),
		Balance:       decimal.Zero,
		PaymentStatus: entity.PaymentPagado,
	}
}
