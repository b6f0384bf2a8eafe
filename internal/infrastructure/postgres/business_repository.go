package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo implementación de BusinessRepository.
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

// Create persiste el negocio. UNIQUE (owner_id, ruc).
func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO businesses (id, owner_id, name, ruc, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.OwnerID, b.Name, b.RUC, nullIfEmpty(b.Address), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: RUC %s", domain.ErrDuplicate, b.RUC)
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// GetByID obtiene el negocio del usuario; nil, nil si no existe.
func (r *BusinessRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Business, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, owner_id, name, ruc, address, created_at, updated_at
		FROM businesses WHERE owner_id = $1 AND id = $2`, ownerID, id)
	b, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

// ListByOwner negocios del usuario por nombre.
func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Business, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, owner_id, name, ruc, address, created_at, updated_at
		FROM businesses WHERE owner_id = $1 ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBusiness(row pgxScanner) (*entity.Business, error) {
	var b entity.Business
	var address *string
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.RUC, &address, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Address = derefStr(address)
	return &b, nil
}
