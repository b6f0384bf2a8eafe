package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

const internalErrorMessage = "error interno"

// writeError traduce errores de dominio a {ok:false, error, code}. Los errores no
// clasificados se registran y se responden con un mensaje genérico.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := classifyError(err)
	if code == dto.CodeInternal {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(dto.ErrorResponse{OK: false, Error: msg, Code: code})
}

func classifyError(err error) (status int, code, msg string) {
	var upstream *domain.UpstreamError
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return fiber.StatusBadRequest, dto.CodeInvalidAmount, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.CodeValidation, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.CodeUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.CodeNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.CodeConflict, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable, dto.CodeUnavailable, err.Error()
	case errors.As(err, &upstream):
		status = upstream.Status
		if status < 400 || status > 599 {
			status = fiber.StatusInternalServerError
		}
		return status, dto.CodeUpstream, upstream.Message
	case errors.As(err, &fe):
		switch {
		case fe.Code >= 500:
			return fe.Code, dto.CodeInternal, internalErrorMessage
		case fe.Code == fiber.StatusNotFound:
			return fe.Code, dto.CodeNotFound, fe.Message
		case fe.Code == fiber.StatusUnauthorized:
			return fe.Code, dto.CodeUnauthorized, fe.Message
		default:
			return fe.Code, dto.CodeValidation, fe.Message
		}
	default:
		return fiber.StatusInternalServerError, dto.CodeInternal, internalErrorMessage
	}
}

// badBody respuesta para cuerpos JSON ilegibles.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		OK: false, Error: "cuerpo de la petición inválido", Code: dto.CodeValidation,
	})
}

// ErrorHandler manejador global de Fiber (panics recuperados, rutas inexistentes).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, log, err)
	}
}
