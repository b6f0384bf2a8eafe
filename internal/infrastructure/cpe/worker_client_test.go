package cpe_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/cpe"
)

func TestEmit_OK(t *testing.T) {
	var got ports.CPEEmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emit", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"ticket":"T-1","status":"ENVIADO"}}`))
	}))
	defer srv.Close()

	c := cpe.NewWorkerClient(srv.URL+"/", time.Second)
	res, err := c.Emit(context.Background(), "token-123", ports.CPEEmitRequest{BusinessID: "b1", InvoiceID: "i1", Env: "beta"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticket":"T-1","status":"ENVIADO"}`, string(res))
	assert.Equal(t, ports.CPEEmitRequest{BusinessID: "b1", InvoiceID: "i1", Env: "beta"}, got)
}

func TestEmit_CuerpoSinResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ticket":"T-2"}`))
	}))
	defer srv.Close()

	res, err := cpe.NewWorkerClient(srv.URL, time.Second).Emit(context.Background(), "t", ports.CPEEmitRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticket":"T-2"}`, string(res))
}

func TestEmit_ErrorPropagaStatusYMensaje(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ok":false,"error":"serie no autorizada"}`))
	}))
	defer srv.Close()

	_, err := cpe.NewWorkerClient(srv.URL, time.Second).Emit(context.Background(), "t", ports.CPEEmitRequest{})
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Equal(t, "serie no autorizada", upstream.Message)
}

func TestEmit_ErrorSinJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := cpe.NewWorkerClient(srv.URL, time.Second).Emit(context.Background(), "t", ports.CPEEmitRequest{})
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.Status)
	assert.Equal(t, "Internal Server Error", upstream.Message)
}

func TestEmit_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := cpe.NewWorkerClient(srv.URL, 50*time.Millisecond).Emit(context.Background(), "t", ports.CPEEmitRequest{})
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusGatewayTimeout, upstream.Status)
}
