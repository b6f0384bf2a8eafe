package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// InvoiceFilter criterios de listado. PaymentStatus filtra por el estado normalizado
// a la fecha AsOf (no por el valor almacenado).
type InvoiceFilter struct {
	OwnerID       string
	BusinessID    string
	DocumentType  sunat.DocumentType
	PaymentStatus entity.PaymentStatus
	AsOf          time.Time
	Limit         int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// Todas las lecturas están acotadas por (owner, business); devuelven nil, nil si no existe.
type InvoiceRepository interface {
	// Create inserta cabecera y líneas. Devuelve domain.ErrDuplicate si la clave ya existe.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error)
	// GetForUpdate lee la factura bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error)
	// UpdateSettlement persiste paid_amount, balance, payment_status y updated_at.
	UpdateSettlement(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
}
