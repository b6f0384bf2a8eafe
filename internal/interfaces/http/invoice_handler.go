package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/dto"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// InvoiceHandler comprobantes FACTURA/BOLETA del negocio (protegido).
type InvoiceHandler struct {
	uc  *billing.InvoiceUseCase
	pdf *billing.PDFUseCase
	log *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdf *billing.PDFUseCase, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdf: pdf, log: log}
}

// Create godoc
// @Summary      Registrar factura o boleta
// @Description  Valida cabecera y líneas, calcula IGV y totales y persiste la factura con su comprobante.
//               La tríada tipo/serie/número es única por negocio.
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Cabecera y líneas"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	invoice, err := h.uc.CreateInvoice(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "invoice": invoice})
}

// List facturas del negocio, más recientes primero.
// GET /billing/invoices?businessId=&documentType=&paymentStatus=&limit=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.ListInvoicesRequest
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, h.log, fiber.NewError(fiber.StatusBadRequest, "parámetros de consulta inválidos"))
	}
	invoices, err := h.uc.ListInvoices(c.UserContext(), GetUserID(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if invoices == nil {
		invoices = []*dto.InvoiceResponse{}
	}
	return c.JSON(fiber.Map{"ok": true, "invoices": invoices})
}

// GetByID GET /billing/invoices/:id?businessId=
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoice(c.UserContext(), GetUserID(c), c.Query("businessId"), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ok": true, "invoice": invoice})
}

// DownloadPDF godoc
// @Summary      Representación impresa
// @Description  Genera el PDF A4 de la factura con QR SUNAT.
// @Tags         billing
// @Security     Bearer
// @Produce      application/pdf
// @Param        id          path   string  true  "ID de la factura"
// @Param        businessId  query  string  true  "Negocio"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /billing/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), GetUserID(c), c.Query("businessId"), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}
