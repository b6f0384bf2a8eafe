// Package subscription orquesta la suscripción del usuario al servicio: checkout en el
// proveedor de pagos y aplicación de los eventos firmados de su webhook.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// Settings valores resueltos de la configuración al arrancar.
type Settings struct {
	Plans          map[string]string // clave de plan -> id en el proveedor
	WebhookSecret  string
	BackURL        string
	IdempotencyTTL time.Duration
}

// UseCase checkout y webhook de suscripciones.
type UseCase struct {
	repo     repository.SubscriptionRepository
	provider ports.SubscriptionProvider
	idem     ports.IdempotencyStore
	cfg      Settings
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. provider nil deshabilita el checkout.
func NewUseCase(
	repo repository.SubscriptionRepository,
	provider ports.SubscriptionProvider,
	idem ports.IdempotencyStore,
	cfg Settings,
	log *logger.Logger,
) *UseCase {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 72 * time.Hour
	}
	return &UseCase{repo: repo, provider: provider, idem: idem, cfg: cfg, log: log, now: time.Now}
}

// Checkout resuelve el plan y crea la suscripción en el proveedor.
func (uc *UseCase) Checkout(ctx context.Context, ownerID string, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	key := strings.ToLower(strings.TrimSpace(req.Plan))
	if key == "" {
		return nil, domain.Invalid("plan es obligatorio")
	}
	planID, ok := uc.cfg.Plans[key]
	if !ok || planID == "" {
		return nil, domain.Invalid("plan %q no disponible", req.Plan)
	}
	if uc.provider == nil {
		return nil, domain.ErrUnavailable
	}

	co, err := uc.provider.CreateCheckout(ctx, ports.CheckoutRequest{
		OwnerID: ownerID,
		PlanID:  planID,
		BackURL: uc.cfg.BackURL,
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Str("plan", key).Msg("checkout de suscripción fallido")
		return nil, err
	}

	// El estado definitivo lo escribe el webhook; aquí solo se deja constancia del intento.
	current, err := uc.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Status != entity.SubscriptionActive {
		err = uc.repo.Upsert(ctx, &entity.Subscription{
			OwnerID:                ownerID,
			Plan:                   key,
			ProviderSubscriptionID: co.SubscriptionID,
			Status:                 entity.SubscriptionPending,
			UpdatedAt:              uc.now().UTC(),
		})
		if err != nil {
			return nil, err
		}
	}
	return &dto.CheckoutResponse{OK: true, CheckoutURL: co.URL, SubscriptionID: co.SubscriptionID}, nil
}

// Get suscripción actual del usuario.
func (uc *UseCase) Get(ctx context.Context, ownerID string) (*dto.SubscriptionResponse, error) {
	s, err := uc.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sin suscripción", domain.ErrNotFound)
	}
	return &dto.SubscriptionResponse{
		Plan:           s.Plan,
		Status:         s.Status,
		SubscriptionID: s.ProviderSubscriptionID,
		UpdatedAt:      s.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// HandleWebhook verifica la firma, descarta eventos repetidos y aplica el evento.
// Los tipos no soportados se aceptan sin efecto para que el proveedor no reintente.
func (uc *UseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if uc.cfg.WebhookSecret == "" {
		return domain.ErrUnavailable
	}
	if !validSignature(uc.cfg.WebhookSecret, payload, signature) {
		return fmt.Errorf("%w: firma inválida", domain.ErrUnauthorized)
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return domain.Invalid("evento inválido")
	}
	if ev.ID == "" {
		return domain.Invalid("evento sin id")
	}
	evType, ok := ParseEventType(ev.Type)
	if !ok {
		uc.log.Info().Str("event_id", ev.ID).Str("type", ev.Type).Msg("evento de suscripción ignorado")
		return nil
	}
	if ev.Data.OwnerID == "" {
		return domain.Invalid("evento sin ownerId")
	}

	fresh, err := uc.idem.MarkProcessed(ctx, ev.ID, uc.cfg.IdempotencyTTL)
	if err != nil {
		return err
	}
	if !fresh {
		uc.log.Debug().Str("event_id", ev.ID).Msg("evento de suscripción repetido")
		return nil
	}

	if err := uc.apply(ctx, evType, ev); err != nil {
		if ferr := uc.idem.Forget(ctx, ev.ID); ferr != nil {
			uc.log.Error().Err(ferr).Str("event_id", ev.ID).Msg("no se pudo liberar la marca de idempotencia")
		}
		return err
	}
	uc.log.Info().Str("event_id", ev.ID).Str("type", evType.String()).Str("owner_id", ev.Data.OwnerID).Msg("evento de suscripción aplicado")
	return nil
}

func (uc *UseCase) apply(ctx context.Context, t EventType, ev Event) error {
	current, err := uc.repo.GetByOwner(ctx, ev.Data.OwnerID)
	if err != nil {
		return err
	}
	next := entity.Subscription{OwnerID: ev.Data.OwnerID, Status: entity.SubscriptionPending}
	if current != nil {
		next = *current
	}
	if plan := uc.planKey(ev.Data.Plan); plan != "" {
		next.Plan = plan
	}
	if ev.Data.SubscriptionID != "" {
		next.ProviderSubscriptionID = ev.Data.SubscriptionID
	}

	switch t {
	case EventSubscriptionCreated:
		if next.Status != entity.SubscriptionActive {
			next.Status = entity.SubscriptionPending
		}
	case EventSubscriptionUpdated:
		if s, ok := providerStatus(ev.Data.Status); ok {
			next.Status = s
		}
	case EventSubscriptionCancelled:
		next.Status = entity.SubscriptionCancelled
	case EventPaymentSucceeded:
		next.Status = entity.SubscriptionActive
	case EventPaymentFailed:
		next.Status = entity.SubscriptionPastDue
	default:
		panic(fmt.Sprintf("subscription: evento sin manejar %d", int(t)))
	}

	next.LastEventID = ev.ID
	next.UpdatedAt = uc.now().UTC()
	return uc.repo.Upsert(ctx, &next)
}

// planKey acepta la clave interna o el id del plan en el proveedor.
func (uc *UseCase) planKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, ok := uc.cfg.Plans[strings.ToLower(raw)]; ok {
		return strings.ToLower(raw)
	}
	for key, id := range uc.cfg.Plans {
		if id == raw {
			return key
		}
	}
	return raw
}

func providerStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "authorized":
		return entity.SubscriptionActive, true
	case "past_due", "paused":
		return entity.SubscriptionPastDue, true
	case "cancelled", "canceled":
		return entity.SubscriptionCancelled, true
	case "pending":
		return entity.SubscriptionPending, true
	}
	return "", false
}
