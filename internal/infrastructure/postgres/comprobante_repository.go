package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo escribe la proyección legada en la tabla comprobantes.
type ComprobanteRepo struct {
	q Querier
}

// NewComprobanteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComprobanteRepository(q Querier) *ComprobanteRepo {
	return &ComprobanteRepo{q: q}
}

// Create inserta la proyección en la misma transacción que la factura.
func (r *ComprobanteRepo) Create(ctx context.Context, c *entity.Comprobante) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO comprobantes (id, owner_id, business_id, invoice_id, tipo, serie, numero,
			cliente_nombre, cliente_tipo_doc, cliente_num_doc, fecha_emision, moneda, total, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.OwnerID, c.BusinessID, c.InvoiceID, c.Tipo, c.Serie, c.Numero,
		c.ClienteNombre, c.ClienteTipoDoc, c.ClienteNumDoc, dateParam(c.FechaEmision), c.Moneda,
		c.Total, c.Estado, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comprobante: %w", err)
	}
	return nil
}
