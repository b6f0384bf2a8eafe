package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// CPEHandler emisión electrónica vía worker fiscal.
type CPEHandler struct {
	uc  *billing.CPERelayUseCase
	log *logger.Logger
}

// NewCPEHandler construye el handler.
func NewCPEHandler(uc *billing.CPERelayUseCase, log *logger.Logger) *CPEHandler {
	return &CPEHandler{uc: uc, log: log}
}

// EmitBeta POST /billing/invoices/:id/emit-cpe
func (h *CPEHandler) EmitBeta(c *fiber.Ctx) error {
	return h.emit(c, billing.CPEEnvBeta)
}

// EmitProd POST /billing/invoices/:id/emit-cpe-prod
func (h *CPEHandler) EmitProd(c *fiber.Ctx) error {
	return h.emit(c, billing.CPEEnvProd)
}

func (h *CPEHandler) emit(c *fiber.Ctx, env billing.CPEEnv) error {
	var in dto.EmitCPERequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.uc.Emit(c.UserContext(), GetUserID(c), GetToken(c), in.BusinessID, c.Params("id"), env)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ok": true, "result": res.Result, "invoice": res.Invoice})
}
