package billing

import (
	"context"
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
	"github.com/jhoicas/facturacion-pe/pkg/money"
)

// PaymentUseCase abonos y cancelación de facturas. Toda escritura de saldo ocurre dentro de
// RunLedger leyendo la factura con bloqueo.
type PaymentUseCase struct {
	txRunner LedgerTxRunner
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository
	log      *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner LedgerTxRunner,
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, invoices: invoices, payments: payments, log: log.Named("payments")}
}

// ApplyPayment registra un abono parcial o total.
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, ownerID, invoiceID string, in dto.ApplyPaymentRequest) (*dto.PaymentResult, error) {
	businessID := strings.TrimSpace(in.BusinessID)
	if businessID == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	amount, err := money.Parse(in.Amount)
	if err != nil {
		return nil, domain.Invalid("amount inválido: %v", err)
	}
	if !money.Round2(amount).GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("amount debe ser mayor a 0")
	}
	now := time.Now()
	paymentDate, err := parsePaymentDate(in.PaymentDate, now)
	if err != nil {
		return nil, err
	}

	var (
		inv     *entity.Invoice
		payment *entity.Payment
	)
	err = uc.txRunner.RunLedger(ctx, func(repos LedgerRepos) error {
		locked, err := lockInvoice(ctx, repos, ownerID, businessID, invoiceID)
		if err != nil {
			return err
		}
		inv = locked
		recorded, s, err := ledger.ApplyAmount(inv, amount)
		if err != nil {
			return err
		}
		payment = newPayment(inv, recorded, paymentDate, in.Note, ownerID, now)
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}
		settle(inv, s, now)
		return repos.Invoices.UpdateSettlement(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("payment_id", payment.ID).
		Str("amount", payment.Amount.StringFixed(2)).
		Str("balance", inv.Balance.StringFixed(2)).
		Msg("abono registrado")
	return paymentResult(inv, &payment.ID, now), nil
}

// MarkFullyPaid cancela el saldo restante. Si ya estaba cancelado solo normaliza los campos
// almacenados y no registra abono (paymentId null), por lo que es idempotente.
func (uc *PaymentUseCase) MarkFullyPaid(ctx context.Context, ownerID, invoiceID string, in dto.MarkPaidRequest) (*dto.PaymentResult, error) {
	businessID := strings.TrimSpace(in.BusinessID)
	if businessID == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	now := time.Now()
	paymentDate, err := parsePaymentDate(in.PaymentDate, now)
	if err != nil {
		return nil, err
	}

	var (
		inv       *entity.Invoice
		paymentID *string
	)
	err = uc.txRunner.RunLedger(ctx, func(repos LedgerRepos) error {
		paymentID = nil
		locked, err := lockInvoice(ctx, repos, ownerID, businessID, invoiceID)
		if err != nil {
			return err
		}
		inv = locked
		amount, needsPayment, s := ledger.SettleInFull(inv)
		if needsPayment {
			p := newPayment(inv, amount, paymentDate, in.Note, ownerID, now)
			if err := repos.Payments.Create(ctx, p); err != nil {
				return err
			}
			paymentID = &p.ID
		}
		settle(inv, s, now)
		return repos.Invoices.UpdateSettlement(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Bool("nuevo_abono", paymentID != nil).
		Msg("factura cancelada")
	return paymentResult(inv, paymentID, now), nil
}

// ListPayments historial de abonos de la factura, por fecha de pago descendente.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, ownerID, businessID, invoiceID string) ([]dto.PaymentResponse, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, domain.Invalid("businessId es obligatorio")
	}
	inv, err := uc.invoices.GetByID(ctx, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
	}
	list, err := uc.payments.ListByInvoice(ctx, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func lockInvoice(ctx context.Context, repos LedgerRepos, ownerID, businessID, id string) (*entity.Invoice, error) {
	inv, err := repos.Invoices.GetForUpdate(ctx, ownerID, businessID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	return inv, nil
}

func settle(inv *entity.Invoice, s ledger.Settlement, now time.Time) {
	inv.PaidAmount = s.PaidAmount
	inv.Balance = s.Balance
	inv.PaymentStatus = s.PaymentStatus
	inv.UpdatedAt = now
}

func newPayment(inv *entity.Invoice, amount decimal.Decimal, date time.Time, note, createdBy string, now time.Time) *entity.Payment {
	return &entity.Payment{
		ID:          uuid.New().String(),
		OwnerID:     inv.OwnerID,
		BusinessID:  inv.BusinessID,
		InvoiceID:   inv.ID,
		Amount:      amount,
		PaymentDate: date,
		Note:        strings.TrimSpace(note),
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
}

func paymentResult(inv *entity.Invoice, paymentID *string, now time.Time) *dto.PaymentResult {
	return &dto.PaymentResult{
		PaymentID:     paymentID,
		PaidAmount:    money.Float(inv.PaidAmount),
		Balance:       money.Float(inv.Balance),
		PaymentStatus: string(ledger.NormalizePaymentStatus(inv.Balance, inv.PaymentStatus, inv.DueDate, now)),
	}
}

// parsePaymentDate acepta RFC 3339 o YYYY-MM-DD; vacío equivale a now.
func parsePaymentDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := ledger.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.Invalid("paymentDate inválido: %s", s)
	}
	return t, nil
}
