package ports

import "context"

// Roles admitidos en una conversación.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage turno de la conversación.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatService puerto de salida hacia el servicio de chat (Anthropic, mock).
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type ChatService interface {
	Chat(ctx context.Context, system string, messages []ChatMessage) (string, error)
}
