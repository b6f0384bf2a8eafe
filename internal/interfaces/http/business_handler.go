package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// BusinessHandler negocios (emisores con RUC) del usuario.
type BusinessHandler struct {
	uc  *billing.BusinessUseCase
	log *logger.Logger
}

// NewBusinessHandler construye el handler.
func NewBusinessHandler(uc *billing.BusinessUseCase, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{uc: uc, log: log}
}

// Create POST /billing/businesses
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBusinessRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "business": b})
}

// List GET /billing/businesses
func (h *BusinessHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if list == nil {
		list = []*dto.BusinessResponse{}
	}
	return c.JSON(fiber.Map{"ok": true, "businesses": list})
}
