package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// BusinessUseCase alta y listado de negocios del usuario.
type BusinessUseCase struct {
	repo repository.BusinessRepository
}

// NewBusinessUseCase construye el caso de uso.
func NewBusinessUseCase(repo repository.BusinessRepository) *BusinessUseCase {
	return &BusinessUseCase{repo: repo}
}

// Create registra un negocio. El RUC debe ser válido y único por usuario.
func (uc *BusinessUseCase) Create(ctx context.Context, ownerID string, in dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name es obligatorio")
	}
	ruc := strings.TrimSpace(in.RUC)
	if err := sunat.ValidateRUC(ruc); err != nil {
		return nil, domain.Invalid("%v", err)
	}
	now := time.Now()
	b := &entity.Business{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		RUC:       ruc,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: ya existe un negocio con RUC %s", domain.ErrConflict, ruc)
		}
		return nil, err
	}
	return toBusinessResponse(b), nil
}

// List lista los negocios del usuario.
func (uc *BusinessUseCase) List(ctx context.Context, ownerID string) ([]*dto.BusinessResponse, error) {
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.BusinessResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBusinessResponse(b))
	}
	return out, nil
}

// Get obtiene un negocio del usuario.
func (uc *BusinessUseCase) Get(ctx context.Context, ownerID, id string) (*entity.Business, error) {
	b, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: negocio %s", domain.ErrNotFound, id)
	}
	return b, nil
}
