package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
)

func newTestService(t *testing.T, h http.HandlerFunc) *AnthropicService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s := NewAnthropicService("sk-test", "claude-test", time.Second)
	s.endpoint = srv.URL
	return s
}

var hola = []ports.ChatMessage{{Role: "user", Content: "hola"}}

func TestChat_OK(t *testing.T) {
	var got anthropicRequest
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hola, "},{"type":"text","text":"¿en qué ayudo?"}]}`))
	})

	reply, err := s.Chat(context.Background(), "", hola)
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿en qué ayudo?", reply)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, defaultSystemPrompt, got.System)
	assert.Equal(t, []anthropicMessage{{Role: "user", Content: "hola"}}, got.Messages)
}

func TestChat_ErrorDeAPI(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"demasiadas solicitudes"}}`))
	})
	_, err := s.Chat(context.Background(), "", hola)
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "demasiadas solicitudes", ue.Message)
}

func TestChat_CredencialInvalidaEsBadGateway(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := s.Chat(context.Background(), "", hola)
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
}

func TestChat_Timeout(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.Chat(ctx, "", hola)
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusGatewayTimeout, ue.Status)
}

func TestChat_SinAPIKey(t *testing.T) {
	s := NewAnthropicService("", "m", time.Second)
	_, err := s.Chat(context.Background(), "", hola)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
