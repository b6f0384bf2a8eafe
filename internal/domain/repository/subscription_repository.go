package repository

import (
	"context"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
)

// SubscriptionRepository define el puerto de persistencia para Subscription.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, s *entity.Subscription) error
	GetByOwner(ctx context.Context, ownerID string) (*entity.Subscription, error)
}
