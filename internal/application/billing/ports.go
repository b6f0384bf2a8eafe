package billing

import (
	"context"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

// LedgerRepos repositorios atados a una misma transacción.
type LedgerRepos struct {
	Invoices     repository.InvoiceRepository
	Payments     repository.PaymentRepository
	Businesses   repository.BusinessRepository
	Comprobantes repository.ComprobanteRepository
}

// LedgerTxRunner ejecuta fn dentro de una transacción del almacén del ledger.
// fn puede ejecutarse más de una vez (reintentos por conflicto de serialización), por lo que
// solo debe leer y escribir a través de los repos recibidos.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(repos LedgerRepos) error) error
}

// InvoicePDFGenerator genera la representación impresa de la factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, business *entity.Business) ([]byte, error)
}
