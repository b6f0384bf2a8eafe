package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

const (
	maxChatMessages = 50
	maxChatChars    = 16000
)

// ChatUseCase relay de conversación hacia el servicio de chat. No guarda historial.
type ChatUseCase struct {
	chat    ports.ChatService
	timeout time.Duration
	log     *logger.Logger
}

// NewChatUseCase construye el caso de uso. chat nil = relay deshabilitado (503).
func NewChatUseCase(chat ports.ChatService, timeout time.Duration, log *logger.Logger) *ChatUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatUseCase{chat: chat, timeout: timeout, log: log}
}

// Chat valida la conversación y devuelve la respuesta del modelo.
func (uc *ChatUseCase) Chat(ctx context.Context, ownerID string, req dto.ChatRequest) (*dto.ChatResponse, error) {
	msgs, err := toChatMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	if uc.chat == nil {
		return nil, domain.ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	reply, err := uc.chat.Chat(ctx, strings.TrimSpace(req.System), msgs)
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Int("messages", len(msgs)).Msg("relay de chat fallido")
		return nil, err
	}
	return &dto.ChatResponse{OK: true, Reply: reply}, nil
}

func toChatMessages(in []dto.ChatMessageRequest) ([]ports.ChatMessage, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("messages es obligatorio")
	}
	if len(in) > maxChatMessages {
		return nil, domain.Invalid("máximo %d mensajes", maxChatMessages)
	}
	out := make([]ports.ChatMessage, 0, len(in))
	total := 0
	for i, m := range in {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != ports.ChatRoleUser && role != ports.ChatRoleAssistant {
			return nil, domain.Invalid("messages[%d].role debe ser user o assistant", i)
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			return nil, domain.Invalid("messages[%d].content es obligatorio", i)
		}
		total += len([]rune(content))
		out = append(out, ports.ChatMessage{Role: role, Content: content})
	}
	if out[0].Role != ports.ChatRoleUser {
		return nil, domain.Invalid("la conversación debe iniciar con un mensaje user")
	}
	if total > maxChatChars {
		return nil, domain.Invalid("la conversación excede %d caracteres", maxChatChars)
	}
	return out, nil
}
