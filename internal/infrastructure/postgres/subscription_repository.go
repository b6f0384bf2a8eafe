package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementación de SubscriptionRepository.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// Upsert una fila por usuario.
func (r *SubscriptionRepo) Upsert(ctx context.Context, s *entity.Subscription) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO subscriptions (owner_id, plan, provider_subscription_id, status, last_event_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO UPDATE
		SET plan                     = EXCLUDED.plan,
		    provider_subscription_id = EXCLUDED.provider_subscription_id,
		    status                   = EXCLUDED.status,
		    last_event_id            = EXCLUDED.last_event_id,
		    updated_at               = EXCLUDED.updated_at`,
		s.OwnerID, s.Plan, nullIfEmpty(s.ProviderSubscriptionID), s.Status, nullIfEmpty(s.LastEventID), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// GetByOwner nil, nil si el usuario no tiene suscripción.
func (r *SubscriptionRepo) GetByOwner(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	var s entity.Subscription
	var providerID, lastEvent *string
	err := r.q.QueryRow(ctx, `
		SELECT owner_id, plan, provider_subscription_id, status, last_event_id, updated_at
		FROM subscriptions WHERE owner_id = $1`, ownerID).Scan(
		&s.OwnerID, &s.Plan, &providerID, &s.Status, &lastEvent, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	s.ProviderSubscriptionID = derefStr(providerID)
	s.LastEventID = derefStr(lastEvent)
	return &s, nil
}
