package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	"github.com/jhoicas/facturacion-pe/pkg/money"
	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	owner_id, business_id, id, document_type, serie, numero,
	customer_name, customer_document_type, customer_document_number,
	issue_date, due_date, currency,
	subtotal, igv, total, paid_amount, balance, payment_status, status,
	cpe, cpe_beta, created_by, created_at, updated_at`

// Create persiste cabecera y líneas. La PK (owner_id, business_id, id) detecta el duplicado.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	var due *string
	if invoice.DueDate != nil {
		d := dateParam(*invoice.DueDate)
		due = &d
	}
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		invoice.OwnerID, invoice.BusinessID, invoice.ID, string(invoice.DocumentType), invoice.Serie, invoice.Numero,
		invoice.CustomerName, string(invoice.CustomerDocumentType), invoice.CustomerDocumentNumber,
		dateParam(invoice.IssueDate), due, invoice.Currency,
		invoice.Subtotal, invoice.IGV, invoice.Total, invoice.PaidAmount, invoice.Balance,
		string(invoice.PaymentStatus), invoice.Status,
		invoice.CPE, invoice.CPEBeta, invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, invoice.FullNumber())
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, it := range invoice.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_items (owner_id, business_id, invoice_id, position, description,
				quantity, unit_price, tax_rate, subtotal, igv, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			invoice.OwnerID, invoice.BusinessID, invoice.ID, it.Position, it.Description,
			it.Quantity, it.UnitPrice, it.TaxRate, it.Subtotal, it.IGV, it.Total,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item %d: %w", it.Position, err)
		}
	}
	return nil
}

// GetByID obtiene la factura con sus líneas; nil, nil si no existe en ese negocio.
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error) {
	return r.get(ctx, ownerID, businessID, id, "")
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error) {
	return r.get(ctx, ownerID, businessID, id, " FOR UPDATE")
}

func (r *InvoiceRepo) get(ctx context.Context, ownerID, businessID, id, lock string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE owner_id = $1 AND business_id = $2 AND id = $3` + lock
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, ownerID, businessID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	items, err := r.items(ctx, ownerID, businessID, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// UpdateSettlement persiste solo los campos de cobranza; cabecera y líneas son inmutables.
func (r *InvoiceRepo) UpdateSettlement(ctx context.Context, invoice *entity.Invoice) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET paid_amount    = $4,
		    balance        = $5,
		    payment_status = $6,
		    updated_at     = $7
		WHERE owner_id = $1 AND business_id = $2 AND id = $3`,
		invoice.OwnerID, invoice.BusinessID, invoice.ID,
		invoice.PaidAmount, invoice.Balance, string(invoice.PaymentStatus), invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// normalizedStatusExpr replica ledger.NormalizePaymentStatus en SQL. epsArg es el
// parámetro del saldo cancelado y todayArg la fecha actual en Lima.
func normalizedStatusExpr(epsArg, todayArg int) string {
	return fmt.Sprintf(`CASE
		WHEN balance <= $%[1]d THEN 'PAGADO'
		WHEN payment_status = 'PARCIAL' THEN 'PARCIAL'
		WHEN due_date IS NOT NULL AND due_date < $%[2]d::date THEN 'VENCIDO'
		WHEN payment_status IN ('PENDIENTE', 'PAGADO', 'VENCIDO') THEN payment_status
		ELSE 'PENDIENTE'
	END`, epsArg, todayArg)
}

// List devuelve las facturas del negocio, con sus líneas, ordenadas por creación descendente.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	args := []any{f.OwnerID, f.BusinessID}
	var where strings.Builder
	where.WriteString("owner_id = $1 AND business_id = $2")
	if f.DocumentType != "" {
		args = append(args, string(f.DocumentType))
		fmt.Fprintf(&where, " AND document_type = $%d", len(args))
	}
	if f.PaymentStatus != "" {
		asOf := f.AsOf
		if asOf.IsZero() {
			asOf = time.Now()
		}
		args = append(args, money.Epsilon, dateParam(asOf), string(f.PaymentStatus))
		n := len(args)
		fmt.Fprintf(&where, " AND (%s) = $%d", normalizedStatusExpr(n-2, n-1), n)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where.String() +
		` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	if err := r.attachItems(ctx, f.OwnerID, f.BusinessID, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachItems carga en una sola consulta las líneas de todas las facturas listadas.
// Debe llamarse con el cursor de facturas ya cerrado: una tx no admite dos consultas abiertas.
func (r *InvoiceRepo) attachItems(ctx context.Context, ownerID, businessID string, list []*entity.Invoice) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Invoice, len(list))
	for i, inv := range list {
		ids[i] = inv.ID
		byID[inv.ID] = inv
	}
	rows, err := r.q.Query(ctx, `
		SELECT invoice_id, position, description, quantity, unit_price, tax_rate, subtotal, igv, total
		FROM invoice_items
		WHERE owner_id = $1 AND business_id = $2 AND invoice_id = ANY($3)
		ORDER BY invoice_id, position`, ownerID, businessID, ids)
	if err != nil {
		return fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			invoiceID string
			it        entity.InvoiceItem
		)
		if err := rows.Scan(&invoiceID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.TaxRate, &it.Subtotal, &it.IGV, &it.Total); err != nil {
			return fmt.Errorf("scan invoice item: %w", err)
		}
		if inv := byID[invoiceID]; inv != nil {
			inv.Items = append(inv.Items, it)
		}
	}
	return rows.Err()
}

func (r *InvoiceRepo) items(ctx context.Context, ownerID, businessID, invoiceID string) ([]entity.InvoiceItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT position, description, quantity, unit_price, tax_rate, subtotal, igv, total
		FROM invoice_items
		WHERE owner_id = $1 AND business_id = $2 AND invoice_id = $3
		ORDER BY position`, ownerID, businessID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.Position, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.TaxRate, &it.Subtotal, &it.IGV, &it.Total); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var (
		inv                entity.Invoice
		docType, custType  string
		status             string
		due                *time.Time
		cpeRaw, cpeBetaRaw []byte
		createdBy          *string
	)
	err := row.Scan(
		&inv.OwnerID, &inv.BusinessID, &inv.ID, &docType, &inv.Serie, &inv.Numero,
		&inv.CustomerName, &custType, &inv.CustomerDocumentNumber,
		&inv.IssueDate, &due, &inv.Currency,
		&inv.Subtotal, &inv.IGV, &inv.Total, &inv.PaidAmount, &inv.Balance, &status, &inv.Status,
		&cpeRaw, &cpeBetaRaw, &createdBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.DocumentType = sunat.DocumentType(docType)
	inv.CustomerDocumentType = sunat.IdentityDocType(custType)
	inv.PaymentStatus = entity.PaymentStatus(status)
	inv.IssueDate = limaDate(inv.IssueDate)
	if due != nil {
		d := limaDate(*due)
		inv.DueDate = &d
	}
	inv.CreatedBy = derefStr(createdBy)
	if inv.CPE, err = decodeCPE(cpeRaw); err != nil {
		return nil, err
	}
	if inv.CPEBeta, err = decodeCPE(cpeBetaRaw); err != nil {
		return nil, err
	}
	return &inv, nil
}

// decodeCPE el worker fiscal escribe el JSONB; un registro ilegible se reporta, no se descarta.
func decodeCPE(raw []byte) (*entity.CPERecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rec entity.CPERecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cpe: %w", err)
	}
	return &rec, nil
}
