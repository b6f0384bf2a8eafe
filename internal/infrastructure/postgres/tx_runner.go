package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
)

var _ billing.LedgerTxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante 40001/40P01 antes de devolver el error.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los conflictos de serialización y deadlocks se reintentan con una transacción nueva.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(repos billing.LedgerRepos) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("transacción abortada tras %d intentos: %w", maxTxAttempts, err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos billing.LedgerRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := billing.LedgerRepos{
		Invoices:     NewInvoiceRepository(tx),
		Payments:     NewPaymentRepository(tx),
		Businesses:   NewBusinessRepository(tx),
		Comprobantes: NewComprobanteRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
