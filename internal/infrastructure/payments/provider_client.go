// Package payments implementa el cliente HTTP del proveedor de suscripciones
// (API de preaprobaciones estilo Mercado Pago).
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
)

var _ ports.SubscriptionProvider = (*ProviderClient)(nil)

const serviceName = "proveedor de suscripciones"

// ProviderClient crea preaprobaciones (suscripciones) y devuelve la URL de pago.
type ProviderClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewProviderClient construye el cliente. timeout <= 0 usa 30 s.
func NewProviderClient(baseURL, accessToken string, timeout time.Duration) *ProviderClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProviderClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type preapprovalRequest struct {
	PlanID            string `json:"preapproval_plan_id"`
	ExternalReference string `json:"external_reference"`
	BackURL           string `json:"back_url,omitempty"`
}

type preapprovalResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

// CreateCheckout POST {baseURL}/preapproval. external_reference lleva el owner para el webhook.
func (c *ProviderClient) CreateCheckout(ctx context.Context, in ports.CheckoutRequest) (*ports.Checkout, error) {
	body, err := json.Marshal(preapprovalRequest{PlanID: in.PlanID, ExternalReference: in.OwnerID, BackURL: in.BackURL})
	if err != nil {
		return nil, fmt.Errorf("suscripción: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/preapproval", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("suscripción: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusGatewayTimeout, Message: "tiempo de espera agotado"}
		}
		return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "no se pudo contactar al proveedor"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("suscripción: leer respuesta: %w", err)
	}
	var parsed preapprovalResponse
	jsonErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if jsonErr == nil {
			switch {
			case parsed.Message != "":
				msg = parsed.Message
			case parsed.Error != "":
				msg = parsed.Error
			}
		}
		// Errores 4xx del proveedor se deben a nuestra request (token, plan): para el cliente son 502.
		status := http.StatusBadGateway
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			status = resp.StatusCode
		}
		return nil, &domain.UpstreamError{Service: serviceName, Status: status, Message: msg}
	}
	if jsonErr != nil || parsed.InitPoint == "" {
		return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "respuesta sin init_point"}
	}
	return &ports.Checkout{SubscriptionID: parsed.ID, URL: parsed.InitPoint}, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
