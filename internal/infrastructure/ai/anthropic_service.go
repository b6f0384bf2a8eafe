// Package ai implementa ports.ChatService sobre la API REST de Anthropic (Messages API).
package ai

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

// Verificar en tiempo de compilación que AnthropicService implementa ChatService.
var _ ports.ChatService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	serviceName          = "anthropic"

	defaultSystemPrompt = `Eres un asistente contable para pequeños negocios en Perú.
Responde en español, de forma breve y práctica. Cuando hables de impuestos usa la normativa SUNAT
(IGV 18%, facturas y boletas electrónicas). Si no tienes certeza, dilo.`
)

// AnthropicService adaptador que implementa ChatService usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar de Go; no requiere el SDK oficial.
type AnthropicService struct {
	apiKey     string
	model      string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador.
// model suele ser "claude-3-5-haiku-20241022".
func NewAnthropicService(apiKey, model string, timeout time.Duration) *AnthropicService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnthropicService{
		apiKey:     apiKey,
		model:      model,
		endpoint:   anthropicMessagesURL,
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat envía la conversación a Claude y devuelve el texto concatenado de la respuesta.
// system vacío usa el prompt del asistente contable.
func (s *AnthropicService) Chat(ctx context.Context, system string, messages []ports.ChatMessage) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY no configurado", domain.ErrUnavailable)
	}
	if system == "" {
		system = defaultSystemPrompt
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    system,
		Messages:  make([]anthropicMessage, 0, len(messages)),
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", &domain.UpstreamError{Service: serviceName, Status: http.StatusGatewayTimeout, Message: "tiempo de espera agotado"}
		}
		return "", &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "no se pudo contactar al servicio de chat"}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	var anthResp anthropicResponse
	jsonErr := json.Unmarshal(rawBody, &anthResp)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if jsonErr == nil && anthResp.Error != nil && anthResp.Error.Message != "" {
			msg = anthResp.Error.Message
		}
		return "", &domain.UpstreamError{Service: serviceName, Status: relayStatus(resp.StatusCode), Message: msg}
	}
	if jsonErr != nil {
		return "", &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "respuesta no es JSON"}
	}

	var sb strings.Builder
	for _, block := range anthResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", &domain.UpstreamError{Service: serviceName, Status: http.StatusBadGateway, Message: "respuesta vacía del modelo"}
	}
	return reply, nil
}

// relayStatus los errores de credencial o de request de la API son fallas del gateway para el
// cliente; solo se propagan rate limit y sobrecarga.
func relayStatus(status int) int {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return status
	case 529: // overloaded_error
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
