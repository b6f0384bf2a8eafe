package subscription_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/application/subscription"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/cache"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/memory"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

const secret = "whsec_test"

type fakeProvider struct {
	got ports.CheckoutRequest
	err error
}

func (f *fakeProvider) CreateCheckout(_ context.Context, req ports.CheckoutRequest) (*ports.Checkout, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &ports.Checkout{SubscriptionID: "sub_1", URL: "https://pago.example/sub_1"}, nil
}

func newUseCase(provider ports.SubscriptionProvider) (*subscription.UseCase, *memory.Store) {
	store := memory.NewStore()
	uc := subscription.NewUseCase(store.Subscriptions(), provider, cache.NewMemoryIdempotencyStore(),
		subscription.Settings{
			Plans:         map[string]string{"basic": "pl_1", "pro": "pl_2"},
			WebhookSecret: secret,
			BackURL:       "https://app.example/gracias",
		}, logger.Nop())
	return uc, store
}

func signedEvent(t *testing.T, ev subscription.Event) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return payload, subscription.Sign(secret, payload)
}

func TestCheckout_ResuelvePlanYRegistraPendiente(t *testing.T) {
	fp := &fakeProvider{}
	uc, store := newUseCase(fp)

	out, err := uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Plan: " Basic "})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "https://pago.example/sub_1", out.CheckoutURL)
	assert.Equal(t, "pl_1", fp.got.PlanID)
	assert.Equal(t, "u1", fp.got.OwnerID)
	assert.Equal(t, "https://app.example/gracias", fp.got.BackURL)

	sub, _ := store.Subscriptions().GetByOwner(context.Background(), "u1")
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionPending, sub.Status)
	assert.Equal(t, "basic", sub.Plan)
}

func TestCheckout_Errores(t *testing.T) {
	uc, _ := newUseCase(&fakeProvider{})
	_, err := uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Plan: "enterprise"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	uc, _ = newUseCase(nil)
	_, err = uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Plan: "pro"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	upstream := &domain.UpstreamError{Service: "x", Status: 502, Message: "caído"}
	uc, store := newUseCase(&fakeProvider{err: upstream})
	_, err = uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Plan: "pro"})
	assert.True(t, errors.As(err, new(*domain.UpstreamError)))
	sub, _ := store.Subscriptions().GetByOwner(context.Background(), "u1")
	assert.Nil(t, sub, "un checkout fallido no escribe")
}

func TestWebhook_FirmaInvalida(t *testing.T) {
	uc, _ := newUseCase(nil)
	payload, _ := signedEvent(t, subscription.Event{ID: "evt_1", Type: "payment.succeeded"})

	assert.ErrorIs(t, uc.HandleWebhook(context.Background(), payload, "deadbeef"), domain.ErrUnauthorized)
	assert.ErrorIs(t, uc.HandleWebhook(context.Background(), payload, ""), domain.ErrUnauthorized)
}

func TestWebhook_CicloDeVida(t *testing.T) {
	uc, store := newUseCase(nil)
	ctx := context.Background()
	steps := []struct {
		evType string
		status string
		want   string
	}{
		{"subscription.created", "", entity.SubscriptionPending},
		{"payment.succeeded", "", entity.SubscriptionActive},
		{"payment.failed", "", entity.SubscriptionPastDue},
		{"subscription.updated", "authorized", entity.SubscriptionActive},
		{"subscription.cancelled", "", entity.SubscriptionCancelled},
	}
	for i, s := range steps {
		ev := subscription.Event{
			ID:   "evt_" + string(rune('a'+i)),
			Type: s.evType,
			Data: subscription.EventData{SubscriptionID: "sub_1", OwnerID: "u1", Plan: "pl_2", Status: s.status},
		}
		payload, sig := signedEvent(t, ev)
		require.NoError(t, uc.HandleWebhook(ctx, payload, sig), s.evType)

		sub, _ := store.Subscriptions().GetByOwner(ctx, "u1")
		require.NotNil(t, sub)
		assert.Equal(t, s.want, sub.Status, s.evType)
		assert.Equal(t, "pro", sub.Plan, "el id del proveedor se traduce a la clave del plan")
		assert.Equal(t, ev.ID, sub.LastEventID)
	}
}

func TestWebhook_EventoRepetidoNoSeReaplica(t *testing.T) {
	uc, store := newUseCase(nil)
	ctx := context.Background()

	paid, sigPaid := signedEvent(t, subscription.Event{ID: "evt_1", Type: "payment.succeeded",
		Data: subscription.EventData{OwnerID: "u1", Plan: "basic"}})
	failed, sigFailed := signedEvent(t, subscription.Event{ID: "evt_2", Type: "payment.failed",
		Data: subscription.EventData{OwnerID: "u1"}})

	require.NoError(t, uc.HandleWebhook(ctx, paid, sigPaid))
	require.NoError(t, uc.HandleWebhook(ctx, failed, sigFailed))
	require.NoError(t, uc.HandleWebhook(ctx, paid, sigPaid), "repetido se acepta")

	sub, _ := store.Subscriptions().GetByOwner(ctx, "u1")
	assert.Equal(t, entity.SubscriptionPastDue, sub.Status)
	assert.Equal(t, "evt_2", sub.LastEventID)
}

func TestWebhook_TipoDesconocidoSeIgnora(t *testing.T) {
	uc, store := newUseCase(nil)
	payload, sig := signedEvent(t, subscription.Event{ID: "evt_1", Type: "invoice.created",
		Data: subscription.EventData{OwnerID: "u1"}})
	require.NoError(t, uc.HandleWebhook(context.Background(), payload, sig))

	sub, _ := store.Subscriptions().GetByOwner(context.Background(), "u1")
	assert.Nil(t, sub)
}

func TestWebhook_SinSecretoConfigurado(t *testing.T) {
	store := memory.NewStore()
	uc := subscription.NewUseCase(store.Subscriptions(), nil, cache.NewMemoryIdempotencyStore(),
		subscription.Settings{}, logger.Nop())
	assert.ErrorIs(t, uc.HandleWebhook(context.Background(), []byte(`{}`), "x"), domain.ErrUnavailable)
}

func TestEventType_String(t *testing.T) {
	for _, tag := range []string{"subscription.created", "subscription.updated", "subscription.cancelled", "payment.succeeded", "payment.failed"} {
		et, ok := subscription.ParseEventType(tag)
		require.True(t, ok)
		assert.Equal(t, tag, et.String())
	}
	assert.Panics(t, func() { _ = subscription.EventType(99).String() })
}

func TestGet(t *testing.T) {
	uc, _ := newUseCase(&fakeProvider{})
	_, err := uc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Checkout(context.Background(), "u1", dto.CheckoutRequest{Plan: "basic"})
	require.NoError(t, err)
	out, err := uc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "basic", out.Plan)
	assert.NotEmpty(t, out.UpdatedAt)
}
