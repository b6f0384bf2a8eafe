package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/ledger"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

func validInput() ledger.InvoiceInput {
	return ledger.InvoiceInput{
		BusinessID:             "biz-1",
		DocumentType:           "FACTURA",
		Serie:                  " f001 ",
		Numero:                 "123",
		CustomerName:           "Comercial Andina SAC",
		CustomerDocumentType:   "RUC",
		CustomerDocumentNumber: "20123456789",
		IssueDate:              "2024-05-01",
		DueDate:                "2024-05-31",
		Items: []ledger.ItemInput{
			{Description: "Servicio de consultoría", Quantity: 2.0, UnitPrice: 50.0, TaxRate: 18.0},
		},
	}
}

// Ejemplo de referencia: qty 2 × 50 con tasa 18 (porcentaje) → 100 / 18 / 118.
func TestValidateInvoice_EjemploIGV18(t *testing.T) {
	d, err := ledger.ValidateInvoice(validInput())
	require.NoError(t, err)

	assert.Equal(t, "100.00", d.Subtotal.StringFixed(2))
	assert.Equal(t, "18.00", d.IGV.StringFixed(2))
	assert.Equal(t, "118.00", d.Total.StringFixed(2))
	assert.Equal(t, "0.18", d.Items[0].TaxRate.String(), "18 se normaliza a 0.18")
	assert.Equal(t, "F001", d.Serie, "serie se normaliza a mayúsculas")
	assert.Equal(t, sunat.CurrencyPEN, d.Currency)
	require.NotNil(t, d.DueDate)
}

// Los totales se calculan sumando valores redondeados por línea.
func TestValidateInvoice_SumaDeRedondeadosPorLinea(t *testing.T) {
	in := validInput()
	in.Items = []ledger.ItemInput{
		{Description: "a", Quantity: "1", UnitPrice: "0.125", TaxRate: "0.18"},
		{Description: "b", Quantity: "1", UnitPrice: "0.125", TaxRate: "0.18"},
	}
	d, err := ledger.ValidateInvoice(in)
	require.NoError(t, err)

	// Cada línea: subtotal round2(0.125)=0.13, igv round2(0.13*0.18=0.0234)=0.02.
	assert.Equal(t, "0.26", d.Subtotal.StringFixed(2), "0.13 + 0.13, no round2(0.25)")
	assert.Equal(t, "0.04", d.IGV.StringFixed(2))
	assert.Equal(t, "0.30", d.Total.StringFixed(2))

	var sum decimal.Decimal
	for _, it := range d.Items {
		sum = sum.Add(it.Subtotal).Add(it.IGV)
	}
	assert.True(t, d.Total.Equal(sum.Round(2)))
}

func TestValidateInvoice_FacturaConDNIRechazada(t *testing.T) {
	in := validInput()
	in.CustomerDocumentType = "DNI"
	in.CustomerDocumentNumber = "12345678"
	_, err := ledger.ValidateInvoice(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "RUC")
}

func TestValidateInvoice_BoletaConDNIAceptada(t *testing.T) {
	in := validInput()
	in.DocumentType = "boleta"
	in.CustomerDocumentType = "DNI"
	d, err := ledger.ValidateInvoice(in)
	require.NoError(t, err)
	assert.Equal(t, sunat.DocumentBoleta, d.DocumentType)
}

func TestValidateInvoice_DueDateAnteriorRechazada(t *testing.T) {
	in := validInput()
	in.DueDate = "2024-04-30"
	_, err := ledger.ValidateInvoice(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateInvoice_DueDateIgualAIssueDateAceptada(t *testing.T) {
	in := validInput()
	in.DueDate = in.IssueDate
	_, err := ledger.ValidateInvoice(in)
	assert.NoError(t, err)
}

func TestValidateInvoice_CamposObligatorios(t *testing.T) {
	cases := map[string]func(*ledger.InvoiceInput){
		"businessId":             func(in *ledger.InvoiceInput) { in.BusinessID = " " },
		"documentType":           func(in *ledger.InvoiceInput) { in.DocumentType = "TICKET" },
		"serie":                  func(in *ledger.InvoiceInput) { in.Serie = "" },
		"numero":                 func(in *ledger.InvoiceInput) { in.Numero = "" },
		"customerName":           func(in *ledger.InvoiceInput) { in.CustomerName = "" },
		"customerDocumentType":   func(in *ledger.InvoiceInput) { in.CustomerDocumentType = "CE" },
		"customerDocumentNumber": func(in *ledger.InvoiceInput) { in.CustomerDocumentNumber = "" },
		"issueDate vacío":        func(in *ledger.InvoiceInput) { in.IssueDate = "" },
		"issueDate inválido":     func(in *ledger.InvoiceInput) { in.IssueDate = "2024-02-30" },
		"dueDate inválido":       func(in *ledger.InvoiceInput) { in.DueDate = "mañana" },
		"items vacío":            func(in *ledger.InvoiceInput) { in.Items = nil },
		"description":            func(in *ledger.InvoiceInput) { in.Items[0].Description = "" },
		"quantity cero":          func(in *ledger.InvoiceInput) { in.Items[0].Quantity = 0.0 },
		"quantity texto":         func(in *ledger.InvoiceInput) { in.Items[0].Quantity = "dos" },
		"unitPrice negativo":     func(in *ledger.InvoiceInput) { in.Items[0].UnitPrice = -1.0 },
		"taxRate ausente":        func(in *ledger.InvoiceInput) { in.Items[0].TaxRate = nil },
		"taxRate > 100":          func(in *ledger.InvoiceInput) { in.Items[0].TaxRate = 118.0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			d, err := ledger.ValidateInvoice(in)
			assert.Nil(t, d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe ser error de validación: %v", err)
		})
	}
}

func TestValidateInvoice_UnitPriceCeroAceptado(t *testing.T) {
	in := validInput()
	in.Items[0].UnitPrice = 0.0
	d, err := ledger.ValidateInvoice(in)
	require.NoError(t, err)
	assert.True(t, d.Total.IsZero())
}

func TestParseDate_RFC3339UsaFechaDeLima(t *testing.T) {
	// 03:00Z del 2 de mayo es aún 1 de mayo en Lima (UTC-5).
	d, err := ledger.ParseDate("2024-05-02T03:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Format("2006-01-02"))
}

func TestValidateInvoice_FormatoSerieNumero(t *testing.T) {
	cases := map[string]func(*ledger.InvoiceInput){
		"serie con separador":     func(in *ledger.InvoiceInput) { in.Serie, in.Numero = "F0|01", "1" },
		"numero con separador":    func(in *ledger.InvoiceInput) { in.Serie, in.Numero = "F0", "01|1" },
		"serie de boleta":         func(in *ledger.InvoiceInput) { in.Serie = "B001" },
		"serie de factura":        func(in *ledger.InvoiceInput) { in.DocumentType, in.CustomerDocumentType = "BOLETA", "DNI" },
		"serie larga":             func(in *ledger.InvoiceInput) { in.Serie = "F0001" },
		"numero de nueve dígitos": func(in *ledger.InvoiceInput) { in.Numero = "123456789" },
		"numero cero":             func(in *ledger.InvoiceInput) { in.Numero = "0" },
		"numero alfanumérico":     func(in *ledger.InvoiceInput) { in.Numero = "12A" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := ledger.ValidateInvoice(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe ser error de validación: %v", err)
		})
	}
}

func TestValidateInvoice_NumeroConCerosIzquierdaMismaIdentidad(t *testing.T) {
	in := validInput()
	in.Numero = "00000123"
	padded, err := ledger.ValidateInvoice(in)
	require.NoError(t, err)

	plain, err := ledger.ValidateInvoice(validInput())
	require.NoError(t, err)
	assert.Equal(t, "123", padded.Numero)
	assert.Equal(t, plain.ID(), padded.ID())
}

func TestValidateInvoice_TotalExcedeMaximo(t *testing.T) {
	in := validInput()
	in.Items[0].Quantity = 1e13
	d, err := ledger.ValidateInvoice(in)
	assert.Nil(t, d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe ser error de validación: %v", err)

	// Cada línea cabe, pero la suma no.
	in = validInput()
	in.Items = []ledger.ItemInput{
		{Description: "a", Quantity: 1, UnitPrice: "800000000000", TaxRate: 0},
		{Description: "b", Quantity: 1, UnitPrice: "800000000000", TaxRate: 0},
	}
	_, err = ledger.ValidateInvoice(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total de la factura")

	in = validInput()
	in.Items = []ledger.ItemInput{{Description: "a", Quantity: 1, UnitPrice: "999999999999.99", TaxRate: 0}}
	d, err = ledger.ValidateInvoice(in)
	require.NoError(t, err)
	assert.Equal(t, "999999999999.99", d.Total.StringFixed(2))
}
