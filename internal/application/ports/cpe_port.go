package ports

import (
	"context"
	"encoding/json"
)

// CPEEmitRequest cuerpo enviado al worker fiscal.
type CPEEmitRequest struct {
	BusinessID string `json:"businessId"`
	InvoiceID  string `json:"invoiceId"`
	Env        string `json:"env"`
}

// CPEWorker puerto de salida hacia el worker que firma y envía el CPE a SUNAT.
// credential es el token del usuario que se reenvía como Bearer.
// Los errores del worker se devuelven como *domain.UpstreamError.
type CPEWorker interface {
	Emit(ctx context.Context, credential string, req CPEEmitRequest) (json.RawMessage, error)
}
