package repository

import (
	"context"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
)

// BusinessRepository define el puerto de persistencia para Business.
type BusinessRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Business, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Business, error)
}
