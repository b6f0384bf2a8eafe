package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// CPEEnv ambiente de emisión electrónica.
type CPEEnv int

const (
	CPEEnvBeta CPEEnv = iota // pruebas SUNAT
	CPEEnvProd               // producción
)

// Tag valor que recibe el worker en el campo env.
func (e CPEEnv) Tag() string {
	switch e {
	case CPEEnvBeta:
		return "beta"
	case CPEEnvProd:
		return "prod"
	}
	panic(fmt.Sprintf("billing: CPEEnv desconocido %d", int(e)))
}

// Record sub-registro de la factura que el worker actualiza en este ambiente.
func (e CPEEnv) Record(inv *entity.Invoice) *entity.CPERecord {
	switch e {
	case CPEEnvBeta:
		return inv.CPEBeta
	case CPEEnvProd:
		return inv.CPE
	}
	panic(fmt.Sprintf("billing: CPEEnv desconocido %d", int(e)))
}

// CPERelayUseCase reenvía solicitudes de emisión al worker fiscal. No reintenta: el worker
// es quien persiste el estado CPE en la factura.
type CPERelayUseCase struct {
	invoices repository.InvoiceRepository
	worker   ports.CPEWorker
	log      *logger.Logger
}

// NewCPERelayUseCase construye el relay. worker nil deja la emisión deshabilitada.
func NewCPERelayUseCase(invoices repository.InvoiceRepository, worker ports.CPEWorker, log *logger.Logger) *CPERelayUseCase {
	return &CPERelayUseCase{invoices: invoices, worker: worker, log: log.Named("cpe")}
}

// Emit solicita la emisión y devuelve el resultado del worker junto con la factura releída.
func (uc *CPERelayUseCase) Emit(ctx context.Context, ownerID, credential, businessID, invoiceID string, env CPEEnv) (*dto.EmitCPEResponse, error) {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	if uc.worker == nil {
		return nil, fmt.Errorf("%w: worker CPE", domain.ErrUnavailable)
	}
	inv, err := uc.invoices.GetByID(ctx, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
	}
	if rec := env.Record(inv); rec != nil && rec.Status == entity.CPEStatusAceptado {
		return nil, fmt.Errorf("%w: el CPE %s ya fue aceptado en %s", domain.ErrConflict, inv.FullNumber(), env.Tag())
	}

	result, err := uc.worker.Emit(ctx, credential, ports.CPEEmitRequest{
		BusinessID: businessID,
		InvoiceID:  invoiceID,
		Env:        env.Tag(),
	})
	if err != nil {
		ev := uc.log.Warn().Err(err).Str("invoice_id", invoiceID).Str("env", env.Tag())
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			ev = ev.Int("upstream_status", upstream.Status)
		}
		ev.Msg("emisión CPE fallida")
		return nil, err
	}

	// El worker ya actualizó el sub-registro CPE; se relee para devolver el estado vigente.
	fresh, err := uc.invoices.GetByID(ctx, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		fresh = inv
	}
	uc.log.Info().Str("invoice_id", invoiceID).Str("env", env.Tag()).Msg("emisión CPE solicitada")
	return &dto.EmitCPEResponse{Result: result, Invoice: toInvoiceResponse(fresh, time.Now())}, nil
}
