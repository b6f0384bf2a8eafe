package dto

// ErrorResponse cuerpo de error HTTP: {"ok": false, "error": "...", "code": "..."}.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Códigos de error estables expuestos al cliente.
const (
	CodeValidation    = "VALIDATION"
	CodeInvalidAmount = "INVALID_AMOUNT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUpstream      = "UPSTREAM"
	CodeUnavailable   = "UNAVAILABLE"
	CodeInternal      = "INTERNAL"
)

// ListLimit aplica el límite por defecto (50) y el máximo (200) de los listados.
func ListLimit(requested int) int {
	switch {
	case requested <= 0:
		return 50
	case requested > 200:
		return 200
	default:
		return requested
	}
}
