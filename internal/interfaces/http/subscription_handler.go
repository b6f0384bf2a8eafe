package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/subscription"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// SignatureHeader cabecera con la firma HMAC-SHA256 del webhook.
const SignatureHeader = "X-Signature"

// SubscriptionHandler checkout y webhook del proveedor de suscripciones.
type SubscriptionHandler struct {
	uc  *subscription.UseCase
	log *logger.Logger
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(uc *subscription.UseCase, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{uc: uc, log: log}
}

// Checkout POST /billing/subscriptions/checkout
func (h *SubscriptionHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Checkout(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Get GET /billing/subscriptions
func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ok": true, "subscription": res})
}

// Webhook público; la autenticidad la da la firma sobre el cuerpo crudo.
// POST /billing/webhooks/subscription
func (h *SubscriptionHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.uc.HandleWebhook(c.UserContext(), payload, c.Get(SignatureHeader)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
