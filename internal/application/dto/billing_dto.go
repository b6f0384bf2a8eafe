package dto

import "github.com/jhoicas/facturacion-pe/internal/domain/entity"

// CreateInvoiceRequest body para POST /billing/invoices.
// Los numéricos de cada línea aceptan número JSON o string numérico.
type CreateInvoiceRequest struct {
	BusinessID             string               `json:"businessId"`
	DocumentType           string               `json:"documentType"`
	Serie                  string               `json:"serie"`
	Numero                 string               `json:"numero"`
	CustomerName           string               `json:"customerName"`
	CustomerDocumentType   string               `json:"customerDocumentType"`
	CustomerDocumentNumber string               `json:"customerDocumentNumber"`
	IssueDate              string               `json:"issueDate"`
	DueDate                string               `json:"dueDate,omitempty"`
	Items                  []InvoiceItemRequest `json:"items"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	UnitPrice   any    `json:"unitPrice"`
	TaxRate     any    `json:"taxRate"`
}

// InvoiceResponse factura proyectada: montos con 2 decimales y estado de pago normalizado.
type InvoiceResponse struct {
	ID                     string                `json:"id"`
	BusinessID             string                `json:"businessId"`
	DocumentType           string                `json:"documentType"`
	Serie                  string                `json:"serie"`
	Numero                 string                `json:"numero"`
	CustomerName           string                `json:"customerName"`
	CustomerDocumentType   string                `json:"customerDocumentType"`
	CustomerDocumentNumber string                `json:"customerDocumentNumber"`
	IssueDate              string                `json:"issueDate"`
	DueDate                *string               `json:"dueDate"`
	Currency               string                `json:"currency"`
	Items                  []InvoiceItemResponse `json:"items"`
	Subtotal               float64               `json:"subtotal"`
	IGV                    float64               `json:"igv"`
	Total                  float64               `json:"total"`
	PaidAmount             float64               `json:"paidAmount"`
	Balance                float64               `json:"balance"`
	PaymentStatus          string                `json:"paymentStatus"`
	Status                 string                `json:"status"`
	CPE                    *entity.CPERecord     `json:"cpe"`
	CPEBeta                *entity.CPERecord     `json:"cpeBeta"`
	CreatedBy              string                `json:"createdBy"`
	CreatedAt              string                `json:"createdAt"`
	UpdatedAt              string                `json:"updatedAt"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
	Subtotal    float64 `json:"subtotal"`
	IGV         float64 `json:"igv"`
	Total       float64 `json:"total"`
}

// ListInvoicesRequest query de GET /billing/invoices.
type ListInvoicesRequest struct {
	BusinessID    string `query:"businessId"`
	DocumentType  string `query:"documentType"`
	PaymentStatus string `query:"paymentStatus"`
	Limit         int    `query:"limit"`
}

// ApplyPaymentRequest body para POST /billing/invoices/:id/payments.
type ApplyPaymentRequest struct {
	BusinessID  string `json:"businessId"`
	Amount      any    `json:"amount"`
	PaymentDate string `json:"paymentDate,omitempty"`
	Note        string `json:"note,omitempty"`
}

// MarkPaidRequest body para POST /billing/invoices/:id/mark-paid.
type MarkPaidRequest struct {
	BusinessID  string `json:"businessId"`
	PaymentDate string `json:"paymentDate,omitempty"`
	Note        string `json:"note,omitempty"`
}

// PaymentResult resultado de un abono o cancelación. PaymentID es null si no se registró abono.
type PaymentResult struct {
	PaymentID     *string `json:"paymentId"`
	PaidAmount    float64 `json:"paidAmount"`
	Balance       float64 `json:"balance"`
	PaymentStatus string  `json:"paymentStatus"`
}

// PaymentResponse abono del historial.
type PaymentResponse struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoiceId"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"paymentDate"`
	Note        string  `json:"note"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
}

// EmitCPERequest body para POST /billing/invoices/:id/emit-cpe(-prod).
type EmitCPERequest struct {
	BusinessID string `json:"businessId"`
}

// EmitCPEResponse resultado del worker fiscal y la factura releída.
type EmitCPEResponse struct {
	Result  any              `json:"result"`
	Invoice *InvoiceResponse `json:"invoice"`
}

// CreateBusinessRequest body para POST /billing/businesses.
type CreateBusinessRequest struct {
	Name    string `json:"name"`
	RUC     string `json:"ruc"`
	Address string `json:"address,omitempty"`
}

// BusinessResponse negocio en respuestas.
type BusinessResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RUC       string `json:"ruc"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}
