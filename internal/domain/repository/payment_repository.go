package repository

import (
	"context"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
)

// PaymentRepository puerto del historial de abonos (solo inserción).
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	// ListByInvoice ordena por fecha de pago descendente.
	ListByInvoice(ctx context.Context, ownerID, businessID, invoiceID string) ([]*entity.Payment, error)
}
