package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create registra el abono. Los abonos nunca se actualizan.
func (r *PaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, owner_id, business_id, invoice_id, amount, payment_date, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		payment.ID, payment.OwnerID, payment.BusinessID, payment.InvoiceID,
		payment.Amount, payment.PaymentDate, nullIfEmpty(payment.Note), payment.CreatedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByInvoice historial de abonos, el más reciente primero.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, ownerID, businessID, invoiceID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, owner_id, business_id, invoice_id, amount, payment_date, note, created_by, created_at
		FROM payments
		WHERE owner_id = $1 AND business_id = $2 AND invoice_id = $3
		ORDER BY payment_date DESC, created_at DESC`, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var note *string
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.BusinessID, &p.InvoiceID, &p.Amount,
			&p.PaymentDate, &note, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Note = derefStr(note)
		list = append(list, &p)
	}
	return list, rows.Err()
}
