package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/application/subscription"
	"github.com/jhoicas/facturacion-pe/internal/application/usecase"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Verifier     ports.IdentityVerifier
	Invoices     *billing.InvoiceUseCase
	Payments     *billing.PaymentUseCase
	Businesses   *billing.BusinessUseCase
	CPE          *billing.CPERelayUseCase
	PDF          *billing.PDFUseCase
	Chat         *usecase.ChatUseCase
	Subscription *subscription.UseCase
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	auth := AuthMiddleware(deps.Verifier)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "status": "ok"})
	})

	subHandler := NewSubscriptionHandler(deps.Subscription, log.Named("subscription"))

	// Webhook del proveedor: público y firmado. Debe registrarse antes del grupo /billing.
	app.Post("/billing/webhooks/subscription", subHandler.Webhook)

	// Facturación (protegido)
	billingGroup := app.Group("/billing", auth)

	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.PDF, log.Named("invoices"))
	paymentHandler := NewPaymentHandler(deps.Payments, log.Named("payments"))
	cpeHandler := NewCPEHandler(deps.CPE, log.Named("cpe"))

	invoices := billingGroup.Group("/invoices")
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Get("/:id/payments", paymentHandler.List)
	invoices.Post("/:id/payments", paymentHandler.Apply)
	invoices.Post("/:id/mark-paid", paymentHandler.MarkPaid)
	invoices.Post("/:id/emit-cpe", cpeHandler.EmitBeta)
	invoices.Post("/:id/emit-cpe-prod", cpeHandler.EmitProd)

	businessHandler := NewBusinessHandler(deps.Businesses, log.Named("businesses"))
	billingGroup.Post("/businesses", businessHandler.Create)
	billingGroup.Get("/businesses", businessHandler.List)

	billingGroup.Post("/subscriptions/checkout", subHandler.Checkout)
	billingGroup.Get("/subscriptions", subHandler.Get)

	// Asistente (protegido)
	ai := app.Group("/ai", auth)
	aiHandler := NewAIHandler(deps.Chat, log.Named("ai"))
	ai.Post("/chat", aiHandler.Chat)
}
