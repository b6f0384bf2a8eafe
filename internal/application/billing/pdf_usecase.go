package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (PDF) de una factura o boleta.
type PDFUseCase struct {
	invoices   repository.InvoiceRepository
	businesses repository.BusinessRepository
	generator  InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoices repository.InvoiceRepository,
	businesses repository.BusinessRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, businesses: businesses, generator: generator}
}

// DownloadInvoicePDF carga factura y negocio emisor y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura o el negocio no existen para el usuario.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, ownerID, businessID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, "", domain.Invalid("businessId es obligatorio")
	}
	inv, err := uc.invoices.GetByID(ctx, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
	}
	business, err := uc.businesses.GetByID(ctx, ownerID, businessID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener negocio: %w", err)
	}
	if business == nil {
		return nil, "", fmt.Errorf("%w: negocio %s", domain.ErrNotFound, businessID)
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, business)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("%s-%s-%s.pdf", business.RUC, inv.DocumentType.Code(), inv.FullNumber())
	return pdfBytes, filename, nil
}
