package billing

import (
	"time"

	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/ledger"
	"github.com/jhoicas/facturacion-pe/pkg/money"
)

const dateLayout = "2006-01-02"

// toInvoiceResponse proyecta la factura para la API con el estado de pago normalizado a now.
func toInvoiceResponse(inv *entity.Invoice, now time.Time) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                     inv.ID,
		BusinessID:             inv.BusinessID,
		DocumentType:           string(inv.DocumentType),
		Serie:                  inv.Serie,
		Numero:                 inv.Numero,
		CustomerName:           inv.CustomerName,
		CustomerDocumentType:   string(inv.CustomerDocumentType),
		CustomerDocumentNumber: inv.CustomerDocumentNumber,
		IssueDate:              inv.IssueDate.Format(dateLayout),
		Currency:               inv.Currency,
		Items:                  make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		Subtotal:               money.Float(inv.Subtotal),
		IGV:                    money.Float(inv.IGV),
		Total:                  money.Float(inv.Total),
		PaidAmount:             money.Float(inv.PaidAmount),
		Balance:                money.Float(inv.Balance),
		PaymentStatus:          string(ledger.NormalizePaymentStatus(inv.Balance, inv.PaymentStatus, inv.DueDate, now)),
		Status:                 inv.Status,
		CPE:                    inv.CPE,
		CPEBeta:                inv.CPEBeta,
		CreatedBy:              inv.CreatedBy,
		CreatedAt:              inv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:              inv.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity.InexactFloat64(),
			UnitPrice:   it.UnitPrice.InexactFloat64(),
			TaxRate:     it.TaxRate.InexactFloat64(),
			Subtotal:    money.Float(it.Subtotal),
			IGV:         money.Float(it.IGV),
			Total:       money.Float(it.Total),
		})
	}
	return resp
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      money.Float(p.Amount),
		PaymentDate: p.PaymentDate.UTC().Format(time.RFC3339),
		Note:        p.Note,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toBusinessResponse(b *entity.Business) *dto.BusinessResponse {
	return &dto.BusinessResponse{
		ID:        b.ID,
		Name:      b.Name,
		RUC:       b.RUC,
		Address:   b.Address,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
