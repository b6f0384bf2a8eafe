package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/postgres"
	"github.com/jhoicas/facturacion-pe/pkg/config"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// newTestPool levanta PostgreSQL en un contenedor y aplica las migraciones embebidas.
// Sin Docker disponible la prueba se omite.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en modo -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("facturacion_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("no se pudo iniciar PostgreSQL de pruebas: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type ledgerFixture struct {
	owner      string
	businessID string
	invoices   *billing.InvoiceUseCase
	payments   *billing.PaymentUseCase
}

// newLedgerFixture cada subprueba usa su propio usuario para no compartir facturas.
func newLedgerFixture(t *testing.T, pool *pgxpool.Pool, owner string) *ledgerFixture {
	t.Helper()
	runner := postgres.NewTxRunner(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	businesses := billing.NewBusinessUseCase(postgres.NewBusinessRepository(pool))

	b, err := businesses.Create(context.Background(), owner, dto.CreateBusinessRequest{Name: "Mi Bodega SAC", RUC: "20131312955"})
	require.NoError(t, err)
	return &ledgerFixture{
		owner:      owner,
		businessID: b.ID,
		invoices:   billing.NewInvoiceUseCase(runner, invoiceRepo, logger.Nop()),
		payments:   billing.NewPaymentUseCase(runner, invoiceRepo, postgres.NewPaymentRepository(pool), logger.Nop()),
	}
}

func (f *ledgerFixture) create(t *testing.T, numero string, quantity, unitPrice, taxRate float64, issue, due string) *dto.InvoiceResponse {
	t.Helper()
	inv, err := f.invoices.CreateInvoice(context.Background(), f.owner, dto.CreateInvoiceRequest{
		BusinessID:             f.businessID,
		DocumentType:           "FACTURA",
		Serie:                  "F001",
		Numero:                 numero,
		CustomerName:           "Comercial Andina SAC",
		CustomerDocumentType:   "RUC",
		CustomerDocumentNumber: "20100070970",
		IssueDate:              issue,
		DueDate:                due,
		Items: []dto.InvoiceItemRequest{
			{Description: "Servicio", Quantity: quantity, UnitPrice: unitPrice, TaxRate: taxRate},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestLedgerPostgres(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	t.Run("abonos concurrentes no exceden el saldo", func(t *testing.T) {
		f := newLedgerFixture(t, pool, "user-concurrencia")
		inv := f.create(t, "1", 1, 100, 0, "2024-05-01", "")
		require.Equal(t, 100.0, inv.Total)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.payments.ApplyPayment(ctx, f.owner, inv.ID, dto.ApplyPaymentRequest{BusinessID: f.businessID, Amount: 60.0})
			}(i)
		}
		wg.Wait()

		var ok, rejected int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInvalidAmount):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, rejected)

		got, err := f.invoices.GetInvoice(ctx, f.owner, f.businessID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, 60.0, got.PaidAmount)
		assert.Equal(t, 40.0, got.Balance)
		assert.Equal(t, "PARCIAL", got.PaymentStatus)

		payments, err := f.payments.ListPayments(ctx, f.owner, f.businessID, inv.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	t.Run("duplicado en el mismo negocio es conflicto", func(t *testing.T) {
		f := newLedgerFixture(t, pool, "user-duplicado")
		f.create(t, "7", 2, 50, 18, "2024-05-01", "")

		_, err := f.invoices.CreateInvoice(ctx, f.owner, dto.CreateInvoiceRequest{
			BusinessID: f.businessID, DocumentType: "FACTURA", Serie: "F001", Numero: "0000007",
			CustomerName: "Otro", CustomerDocumentType: "RUC", CustomerDocumentNumber: "20100070970",
			IssueDate: "2024-05-02",
			Items:     []dto.InvoiceItemRequest{{Description: "X", Quantity: 1.0, UnitPrice: 10.0, TaxRate: 18.0}},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrConflict), "se obtuvo %v", err)

		list, err := f.invoices.ListInvoices(ctx, f.owner, dto.ListInvoicesRequest{BusinessID: f.businessID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 118.0, list[0].Total, "el rechazo no altera la factura original")
	})

	t.Run("cancelar dos veces no duplica el abono", func(t *testing.T) {
		f := newLedgerFixture(t, pool, "user-cancelacion")
		inv := f.create(t, "3", 2, 50, 18, "2024-05-01", "")

		first, err := f.payments.MarkFullyPaid(ctx, f.owner, inv.ID, dto.MarkPaidRequest{BusinessID: f.businessID})
		require.NoError(t, err)
		require.NotNil(t, first.PaymentID)
		assert.Equal(t, 118.0, first.PaidAmount)
		assert.Equal(t, 0.0, first.Balance)
		assert.Equal(t, "PAGADO", first.PaymentStatus)

		second, err := f.payments.MarkFullyPaid(ctx, f.owner, inv.ID, dto.MarkPaidRequest{BusinessID: f.businessID})
		require.NoError(t, err)
		assert.Nil(t, second.PaymentID)
		assert.Equal(t, "PAGADO", second.PaymentStatus)

		payments, err := f.payments.ListPayments(ctx, f.owner, f.businessID, inv.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	t.Run("filtro VENCIDO derivado de dueDate con líneas", func(t *testing.T) {
		f := newLedgerFixture(t, pool, "user-vencido")
		vencida := f.create(t, "1", 2, 50, 18, "2020-01-01", "2020-01-31")
		f.create(t, "2", 2, 50, 18, "2024-05-01", "")
		pagada := f.create(t, "3", 2, 50, 18, "2020-01-01", "2020-01-31")
		_, err := f.payments.MarkFullyPaid(ctx, f.owner, pagada.ID, dto.MarkPaidRequest{BusinessID: f.businessID})
		require.NoError(t, err)

		list, err := f.invoices.ListInvoices(ctx, f.owner, dto.ListInvoicesRequest{BusinessID: f.businessID, PaymentStatus: "VENCIDO"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, vencida.ID, list[0].ID)
		assert.Equal(t, "VENCIDO", list[0].PaymentStatus)
		assert.Len(t, list[0].Items, 1, "el listado incluye las líneas")

		list, err = f.invoices.ListInvoices(ctx, f.owner, dto.ListInvoicesRequest{BusinessID: f.businessID, PaymentStatus: "PENDIENTE"})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = f.invoices.ListInvoices(ctx, f.owner, dto.ListInvoicesRequest{BusinessID: f.businessID, PaymentStatus: "PAGADO"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pagada.ID, list[0].ID)
	})
}
