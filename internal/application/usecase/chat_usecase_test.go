package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/application/usecase"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

type fakeChat struct {
	system string
	got    []ports.ChatMessage
	reply  string
	err    error
}

func (f *fakeChat) Chat(_ context.Context, system string, messages []ports.ChatMessage) (string, error) {
	f.system, f.got = system, messages
	return f.reply, f.err
}

func TestChat_NormalizaYDelega(t *testing.T) {
	fc := &fakeChat{reply: "Hola"}
	uc := usecase.NewChatUseCase(fc, time.Second, logger.Nop())

	out, err := uc.Chat(context.Background(), "u1", dto.ChatRequest{
		System:   "  Eres un asistente contable ",
		Messages: []dto.ChatMessageRequest{{Role: "USER", Content: " ¿Qué es el IGV? "}},
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "Hola", out.Reply)
	assert.Equal(t, "Eres un asistente contable", fc.system)
	assert.Equal(t, []ports.ChatMessage{{Role: "user", Content: "¿Qué es el IGV?"}}, fc.got)
}

func TestChat_Validacion(t *testing.T) {
	uc := usecase.NewChatUseCase(&fakeChat{}, time.Second, logger.Nop())
	cases := map[string][]dto.ChatMessageRequest{
		"vacío":             nil,
		"rol inválido":      {{Role: "system", Content: "x"}},
		"contenido vacío":   {{Role: "user", Content: "  "}},
		"inicia assistant":  {{Role: "assistant", Content: "hola"}, {Role: "user", Content: "x"}},
		"excede caracteres": {{Role: "user", Content: strings.Repeat("a", 16001)}},
	}
	for name, msgs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Chat(context.Background(), "u1", dto.ChatRequest{Messages: msgs})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestChat_SinServicioConfigurado(t *testing.T) {
	uc := usecase.NewChatUseCase(nil, time.Second, logger.Nop())
	_, err := uc.Chat(context.Background(), "u1", dto.ChatRequest{
		Messages: []dto.ChatMessageRequest{{Role: "user", Content: "hola"}},
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestChat_PropagaErrorUpstream(t *testing.T) {
	upstream := &domain.UpstreamError{Service: "anthropic", Status: 429, Message: "rate limit"}
	uc := usecase.NewChatUseCase(&fakeChat{err: upstream}, time.Second, logger.Nop())
	_, err := uc.Chat(context.Background(), "u1", dto.ChatRequest{
		Messages: []dto.ChatMessageRequest{{Role: "user", Content: "hola"}},
	})
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 429, ue.Status)
}
