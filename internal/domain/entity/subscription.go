package entity

import "time"

// Estados de suscripción reportados por el proveedor de pagos.
const (
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
	SubscriptionPending   = "pending"
)

// Subscription suscripción del usuario al servicio (solo la escribe el webhook del proveedor).
type Subscription struct {
	OwnerID                string
	Plan                   string
	ProviderSubscriptionID string
	Status                 string
	LastEventID            string
	UpdatedAt              time.Time
}
