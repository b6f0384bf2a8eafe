package repository

import (
	"context"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
)

// ComprobanteRepository escribe la proyección legada; no tiene lecturas en este servicio.
type ComprobanteRepository interface {
	Create(ctx context.Context, c *entity.Comprobante) error
}
