package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrInvalidAmount = errors.New("el monto excede el saldo pendiente")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrUnavailable   = errors.New("servicio no configurado")
)

// UpstreamError error reportado por un servicio externo (worker CPE, proveedor de suscripciones, LLM).
// Status es el código HTTP a propagar; 0 se trata como 500.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Service, e.Message, e.Status)
}

// Invalid construye un error de validación con mensaje específico para el cliente.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
