package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/ledger"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// InvoiceUseCase emisión y consulta de facturas/boletas.
type InvoiceUseCase struct {
	txRunner LedgerTxRunner
	invoices repository.InvoiceRepository
	log      *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner LedgerTxRunner, invoices repository.InvoiceRepository, log *logger.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{txRunner: txRunner, invoices: invoices, log: log.Named("invoices")}
}

// CreateInvoice valida el payload y, en una sola transacción, verifica el negocio, rechaza
// duplicados por (documentType, serie, numero) y escribe factura, líneas y comprobante legado.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, ownerID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	draft, err := ledger.ValidateInvoice(toInvoiceInput(in))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := draft.ID()
	var inv *entity.Invoice

	err = uc.txRunner.RunLedger(ctx, func(repos LedgerRepos) error {
		business, err := repos.Businesses.GetByID(ctx, ownerID, draft.BusinessID)
		if err != nil {
			return err
		}
		if business == nil {
			return fmt.Errorf("%w: negocio %s", domain.ErrNotFound, draft.BusinessID)
		}
		existing, err := repos.Invoices.GetByID(ctx, ownerID, draft.BusinessID, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return duplicateInvoice(draft)
		}

		inv = newInvoice(ownerID, id, draft, now)
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return duplicateInvoice(draft)
			}
			return err
		}
		return repos.Comprobantes.Create(ctx, newComprobante(inv, now))
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("business_id", inv.BusinessID).
		Str("numero", inv.FullNumber()).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura emitida")
	return toInvoiceResponse(inv, now), nil
}

// GetInvoice obtiene una factura del negocio.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, ownerID, businessID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, ownerID, businessID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// ListInvoices lista facturas del negocio, más recientes primero.
// El filtro paymentStatus compara contra el estado normalizado, no el almacenado.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, ownerID string, q dto.ListInvoicesRequest) ([]*dto.InvoiceResponse, error) {
	businessID := strings.TrimSpace(q.BusinessID)
	if businessID == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	now := time.Now()
	filter := repository.InvoiceFilter{
		OwnerID:    ownerID,
		BusinessID: businessID,
		AsOf:       now,
		Limit:      dto.ListLimit(q.Limit),
	}
	if strings.TrimSpace(q.DocumentType) != "" {
		dt, ok := sunat.ParseDocumentType(q.DocumentType)
		if !ok {
			return nil, domain.Invalid("documentType debe ser FACTURA o BOLETA")
		}
		filter.DocumentType = dt
	}
	if strings.TrimSpace(q.PaymentStatus) != "" {
		ps := entity.PaymentStatus(strings.ToUpper(strings.TrimSpace(q.PaymentStatus)))
		if !ps.IsValid() {
			return nil, domain.Invalid("paymentStatus debe ser PENDIENTE, PARCIAL, PAGADO o VENCIDO")
		}
		filter.PaymentStatus = ps
	}

	list, err := uc.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		resp := toInvoiceResponse(inv, now)
		if filter.PaymentStatus != "" && resp.PaymentStatus != string(filter.PaymentStatus) {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

// load lectura sin bloqueo acotada por owner/business; ErrNotFound si no existe.
func (uc *InvoiceUseCase) load(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	inv, err := uc.invoices.GetByID(ctx, ownerID, businessID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	return inv, nil
}

func toInvoiceInput(in dto.CreateInvoiceRequest) ledger.InvoiceInput {
	items := make([]ledger.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}
	return ledger.InvoiceInput{
		BusinessID:             in.BusinessID,
		DocumentType:           in.DocumentType,
		Serie:                  in.Serie,
		Numero:                 in.Numero,
		CustomerName:           in.CustomerName,
		CustomerDocumentType:   in.CustomerDocumentType,
		CustomerDocumentNumber: in.CustomerDocumentNumber,
		IssueDate:              in.IssueDate,
		DueDate:                in.DueDate,
		Items:                  items,
	}
}

func newInvoice(ownerID, id string, d *ledger.Draft, now time.Time) *entity.Invoice {
	return &entity.Invoice{
		ID:                     id,
		OwnerID:                ownerID,
		BusinessID:             d.BusinessID,
		DocumentType:           d.DocumentType,
		Serie:                  d.Serie,
		Numero:                 d.Numero,
		CustomerName:           d.CustomerName,
		CustomerDocumentType:   d.CustomerDocumentType,
		CustomerDocumentNumber: d.CustomerDocumentNumber,
		IssueDate:              d.IssueDate,
		DueDate:                d.DueDate,
		Currency:               d.Currency,
		Items:                  d.Items,
		Subtotal:               d.Subtotal,
		IGV:                    d.IGV,
		Total:                  d.Total,
		PaidAmount:             decimal.Zero,
		Balance:                d.Total,
		PaymentStatus:          entity.PaymentPendiente,
		Status:                 entity.InvoiceStatusEmitido,
		CreatedBy:              ownerID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func newComprobante(inv *entity.Invoice, now time.Time) *entity.Comprobante {
	return &entity.Comprobante{
		ID:             uuid.New().String(),
		OwnerID:        inv.OwnerID,
		BusinessID:     inv.BusinessID,
		InvoiceID:      inv.ID,
		Tipo:           string(inv.DocumentType),
		Serie:          inv.Serie,
		Numero:         inv.Numero,
		ClienteNombre:  inv.CustomerName,
		ClienteTipoDoc: string(inv.CustomerDocumentType),
		ClienteNumDoc:  inv.CustomerDocumentNumber,
		FechaEmision:   inv.IssueDate,
		Moneda:         inv.Currency,
		Total:          inv.Total,
		Estado:         inv.Status,
		CreatedAt:      now,
	}
}

func duplicateInvoice(d *ledger.Draft) error {
	return fmt.Errorf("%w: ya existe %s %s-%s en el negocio", domain.ErrConflict, d.DocumentType, d.Serie, d.Numero)
}
