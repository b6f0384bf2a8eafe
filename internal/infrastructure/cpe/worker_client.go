// Package cpe implementa el cliente HTTP del worker fiscal que firma y envía los
// comprobantes electrónicos (CPE) a SUNAT.
package cpe

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

// Verificar en tiempo de compilación que WorkerClient implementa CPEWorker.
var _ ports.CPEWorker = (*WorkerClient)(nil)

const (
	serviceName    = "worker CPE"
	defaultTimeout = 30 * time.Second
	maxBody        = 64 * 1024
)

// WorkerClient adaptador HTTP del worker fiscal. No reintenta.
type WorkerClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewWorkerClient construye el cliente. timeout <= 0 usa 30 s.
func NewWorkerClient(baseURL string, timeout time.Duration) *WorkerClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WorkerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type workerResponse struct {
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Emit envía POST {baseURL}/emit con el token del usuario como Bearer.
// Devuelve el campo result de la respuesta (o el cuerpo completo si no lo trae).
func (c *WorkerClient) Emit(ctx context.Context, credential string, in ports.CPEEmitRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("cpe: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cpe: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusGatewayTimeout, Message: "tiempo de espera agotado"}
		}
		return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "no se pudo contactar al worker"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusGatewayTimeout, Message: "tiempo de espera agotado"}
		}
		return nil, fmt.Errorf("cpe: leer respuesta: %w", err)
	}

	var parsed workerResponse
	jsonErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if jsonErr == nil {
			switch {
			case parsed.Error != "":
				msg = parsed.Error
			case parsed.Message != "":
				msg = parsed.Message
			}
		}
		return nil, &domain.UpstreamError{Service: serviceName, Status: resp.StatusCode, Message: msg}
	}

	switch {
	case len(bytes.TrimSpace(raw)) == 0:
		return json.RawMessage("null"), nil
	case jsonErr == nil && len(parsed.Result) > 0:
		return parsed.Result, nil
	case json.Valid(raw):
		return json.RawMessage(raw), nil
	default:
		return nil, &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "respuesta no es JSON"}
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
