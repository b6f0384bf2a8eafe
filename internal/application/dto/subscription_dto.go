package dto

// CheckoutRequest body de POST /billing/subscriptions/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// CheckoutResponse URL de pago del proveedor.
type CheckoutResponse struct {
	OK             bool   `json:"ok"`
	CheckoutURL    string `json:"checkoutUrl"`
	SubscriptionID string `json:"subscriptionId"`
}

// SubscriptionResponse estado actual de la suscripción del usuario.
type SubscriptionResponse struct {
	Plan           string `json:"plan"`
	Status         string `json:"status"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	UpdatedAt      string `json:"updatedAt"`
}
