package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

func sampleInvoice() (*entity.Invoice, *entity.Business) {
	issue := time.Date(2024, 5, 1, 0, 0, 0, 0, sunat.Lima)
	inv := &entity.Invoice{
		ID:                     "abc",
		DocumentType:           sunat.DocumentFactura,
		Serie:                  "F001",
		Numero:                 "123",
		CustomerName:           "Comercial Andina SAC",
		CustomerDocumentType:   sunat.IdentityRUC,
		CustomerDocumentNumber: "20131312955",
		IssueDate:              issue,
		Currency:               sunat.CurrencyPEN,
		Items: []entity.InvoiceItem{{
			Position: 1, Description: "Servicio", Quantity: decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(50), TaxRate: decimal.RequireFromString("0.18"),
			Subtotal: decimal.NewFromInt(100), IGV: decimal.NewFromInt(18), Total: decimal.NewFromInt(118),
		}},
		Subtotal: decimal.NewFromInt(100),
		IGV:      decimal.NewFromInt(18),
		Total:    decimal.NewFromInt(118),
		Balance:  decimal.NewFromInt(118),
	}
	business := &entity.Business{Name: "Mi Bodega SAC", RUC: "20100070970", Address: "Av. Arequipa 123, Lima"}
	return inv, business
}

func TestGenerateInvoicePDF(t *testing.T) {
	inv, business := sampleInvoice()
	out, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), inv, business)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestQRData_FormatoSUNAT(t *testing.T) {
	inv, business := sampleInvoice()
	assert.Equal(t, "20100070970|01|F001|123|18.00|118.00|2024-05-01|6|20131312955|", qrData(inv, business))
}

func TestFormatSoles(t *testing.T) {
	assert.Equal(t, "S/ 0.50", formatSoles(decimal.RequireFromString("0.5")))
	assert.Equal(t, "S/ 118.00", formatSoles(decimal.NewFromInt(118)))
	assert.Equal(t, "S/ 1,234,567.89", formatSoles(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-S/ 1,000.00", formatSoles(decimal.NewFromInt(-1000)))
}
