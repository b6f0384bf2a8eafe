package subscription

import "fmt"

// EventType tipo de evento del webhook del proveedor.
type EventType int

const (
	EventSubscriptionCreated EventType = iota + 1
	EventSubscriptionUpdated
	EventSubscriptionCancelled
	EventPaymentSucceeded
	EventPaymentFailed
)

// ParseEventType convierte la etiqueta del proveedor. ok=false para tipos no soportados.
func ParseEventType(tag string) (EventType, bool) {
	switch tag {
	case "subscription.created":
		return EventSubscriptionCreated, true
	case "subscription.updated":
		return EventSubscriptionUpdated, true
	case "subscription.cancelled":
		return EventSubscriptionCancelled, true
	case "payment.succeeded":
		return EventPaymentSucceeded, true
	case "payment.failed":
		return EventPaymentFailed, true
	}
	return 0, false
}

// String etiqueta del proveedor.
func (t EventType) String() string {
	switch t {
	case EventSubscriptionCreated:
		return "subscription.created"
	case EventSubscriptionUpdated:
		return "subscription.updated"
	case EventSubscriptionCancelled:
		return "subscription.cancelled"
	case EventPaymentSucceeded:
		return "payment.succeeded"
	case EventPaymentFailed:
		return "payment.failed"
	}
	panic(fmt.Sprintf("subscription: EventType desconocido %d", int(t)))
}

// Event cuerpo del webhook.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData referencia a la suscripción afectada.
type EventData struct {
	SubscriptionID string `json:"subscriptionId"`
	OwnerID        string `json:"ownerId"`
	Plan           string `json:"plan"`
	Status         string `json:"status"`
}
