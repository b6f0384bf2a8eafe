package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// PaymentHandler abonos y cancelación de facturas (protegido).
type PaymentHandler struct {
	uc  *billing.PaymentUseCase
	log *logger.Logger
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, log: log}
}

// Apply godoc
// @Summary      Registrar abono
// @Description  Aplica un pago parcial o total. El monto no puede exceder el saldo pendiente.
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la factura"
// @Param        body  body  dto.ApplyPaymentRequest  true  "businessId, amount, paymentDate, note"
// @Success      200   {object}  dto.PaymentResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /billing/invoices/{id}/payments [post]
func (h *PaymentHandler) Apply(c *fiber.Ctx) error {
	var in dto.ApplyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.ApplyPayment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resultBody(res))
}

// MarkPaid cancela el saldo completo; sin saldo no registra abono.
// POST /billing/invoices/:id/mark-paid
func (h *PaymentHandler) MarkPaid(c *fiber.Ctx) error {
	var in dto.MarkPaidRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.MarkFullyPaid(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resultBody(res))
}

// List GET /billing/invoices/:id/payments?businessId=
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	payments, err := h.uc.ListPayments(c.UserContext(), GetUserID(c), c.Query("businessId"), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if payments == nil {
		payments = []dto.PaymentResponse{}
	}
	return c.JSON(fiber.Map{"ok": true, "payments": payments})
}

func resultBody(res *dto.PaymentResult) fiber.Map {
	return fiber.Map{
		"ok":            true,
		"paymentId":     res.PaymentID,
		"paidAmount":    res.PaidAmount,
		"balance":       res.Balance,
		"paymentStatus": res.PaymentStatus,
	}
}
