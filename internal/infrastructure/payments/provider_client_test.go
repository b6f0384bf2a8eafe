package payments

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

func TestCreateCheckout_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/preapproval", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body preapprovalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pl_1", body.PlanID)
		assert.Equal(t, "user-1", body.ExternalReference)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"sub_9","init_point":"https://pago.example/checkout/sub_9"}`))
	}))
	defer srv.Close()

	c := NewProviderClient(srv.URL+"/", "tok", time.Second)
	co, err := c.CreateCheckout(context.Background(), ports.CheckoutRequest{OwnerID: "user-1", PlanID: "pl_1"})
	require.NoError(t, err)
	assert.Equal(t, "sub_9", co.SubscriptionID)
	assert.Equal(t, "https://pago.example/checkout/sub_9", co.URL)
}

func TestCreateCheckout_ErrorDelProveedor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"plan inexistente"}`))
	}))
	defer srv.Close()

	_, err := NewProviderClient(srv.URL, "tok", time.Second).
		CreateCheckout(context.Background(), ports.CheckoutRequest{OwnerID: "u", PlanID: "x"})
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Equal(t, "plan inexistente", ue.Message)
}

func TestCreateCheckout_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewProviderClient(srv.URL, "tok", 50*time.Millisecond).
		CreateCheckout(context.Background(), ports.CheckoutRequest{OwnerID: "u", PlanID: "x"})
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusGatewayTimeout, ue.Status)
}
