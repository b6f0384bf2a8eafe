package ports

import (
	"context"
	"time"
)

// CheckoutRequest datos para iniciar la suscripción en el proveedor de pagos.
type CheckoutRequest struct {
	OwnerID string
	PlanID  string // id del plan en el proveedor
	BackURL string
}

// Checkout respuesta del proveedor: URL a la que se redirige al usuario.
type Checkout struct {
	SubscriptionID string
	URL            string
}

// SubscriptionProvider puerto hacia el proveedor de suscripciones.
type SubscriptionProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// IdempotencyStore registra eventos de webhook ya procesados.
type IdempotencyStore interface {
	// MarkProcessed devuelve true si el evento no se había visto (queda marcado por ttl).
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	// Forget libera la marca cuando el procesamiento falló, para aceptar el reintento.
	Forget(ctx context.Context, eventID string) error
}
