package dto

// ChatMessageRequest turno de la conversación enviado por el cliente.
type ChatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest body de POST /ai/chat.
type ChatRequest struct {
	Messages []ChatMessageRequest `json:"messages"`
	System   string               `json:"system,omitempty"`
}

// ChatResponse respuesta del relay de chat.
type ChatResponse struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}
