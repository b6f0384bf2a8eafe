package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/usecase"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// AIHandler asistente contable (relay al LLM).
type AIHandler struct {
	uc  *usecase.ChatUseCase
	log *logger.Logger
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.ChatUseCase, log *logger.Logger) *AIHandler {
	return &AIHandler{uc: uc, log: log}
}

// Chat godoc
// @Summary      Chat con el asistente contable
// @Description  Reenvía la conversación al modelo y devuelve la respuesta.
//               El primer mensaje debe ser del usuario y los roles alternan user/assistant.
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChatRequest  true  "messages y system opcional"
// @Success      200   {object}  dto.ChatResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /ai/chat [post]
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Chat(c.UserContext(), GetUserID(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}
