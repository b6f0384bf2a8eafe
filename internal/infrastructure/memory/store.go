// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y en
// desarrollo local (DB_DRIVER=memory). Las transacciones se serializan y sus escrituras solo
// se publican al confirmar.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/internal/domain/entity"
	"github.com/jhoicas/facturacion-pe/internal/domain/ledger"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
)

var _ billing.LedgerTxRunner = (*Store)(nil)

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	businesses    map[string]*entity.Business // owner/id
	invoices      map[string]*entity.Invoice  // owner/business/id
	payments      map[string][]*entity.Payment
	comprobantes  []*entity.Comprobante
	subscriptions map[string]*entity.Subscription
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		businesses:    make(map[string]*entity.Business),
		invoices:      make(map[string]*entity.Invoice),
		payments:      make(map[string][]*entity.Payment),
		subscriptions: make(map[string]*entity.Subscription),
	}
}

// tx escrituras pendientes de una transacción.
type tx struct {
	businesses   map[string]*entity.Business
	invoices     map[string]*entity.Invoice
	payments     []*entity.Payment
	comprobantes []*entity.Comprobante
}

// RunLedger ejecuta fn con repos transaccionales. Si fn devuelve error nada se publica.
func (s *Store) RunLedger(ctx context.Context, fn func(repos billing.LedgerRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		businesses: make(map[string]*entity.Business),
		invoices:   make(map[string]*entity.Invoice),
	}
	repos := billing.LedgerRepos{
		Invoices:     &InvoiceRepo{s: s, tx: t},
		Payments:     &PaymentRepo{s: s, tx: t},
		Businesses:   &BusinessRepo{s: s, tx: t},
		Comprobantes: &ComprobanteRepo{s: s, tx: t},
	}
	if err := fn(repos); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range t.businesses {
		s.businesses[k] = b
	}
	for k, inv := range t.invoices {
		s.invoices[k] = inv
	}
	for _, p := range t.payments {
		k := invoiceKey(p.OwnerID, p.BusinessID, p.InvoiceID)
		s.payments[k] = append(s.payments[k], p)
	}
	s.comprobantes = append(s.comprobantes, t.comprobantes...)
	return nil
}

// Invoices repositorio de facturas fuera de transacción.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// Payments repositorio de abonos fuera de transacción.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

// Businesses repositorio de negocios fuera de transacción.
func (s *Store) Businesses() *BusinessRepo { return &BusinessRepo{s: s} }

// Comprobantes repositorio de la proyección legada fuera de transacción.
func (s *Store) Comprobantes() *ComprobanteRepo { return &ComprobanteRepo{s: s} }

// Subscriptions repositorio de suscripciones.
func (s *Store) Subscriptions() *SubscriptionRepo { return &SubscriptionRepo{s: s} }

// UpdateCPE escribe el sub-registro CPE de un ambiente ("beta" o "prod"), como lo haría el
// worker fiscal sobre el almacén compartido. Espera a que termine la transacción en curso,
// que al confirmar reemplaza la factura completa. No debe llamarse dentro de RunLedger.
func (s *Store) UpdateCPE(ownerID, businessID, invoiceID, env string, rec entity.CPERecord) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceKey(ownerID, businessID, invoiceID)]
	if !ok {
		return domain.ErrNotFound
	}
	c := cloneInvoice(inv)
	switch env {
	case "beta":
		c.CPEBeta = &rec
	case "prod":
		c.CPE = &rec
	default:
		return domain.Invalid("env desconocido %q", env)
	}
	s.invoices[invoiceKey(ownerID, businessID, invoiceID)] = c
	return nil
}

// ComprobantesFor proyecciones legadas de una factura.
func (s *Store) ComprobantesFor(invoiceID string) []entity.Comprobante {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Comprobante
	for _, c := range s.comprobantes {
		if c.InvoiceID == invoiceID {
			out = append(out, *c)
		}
	}
	return out
}

// ── Facturas ─────────────────────────────────────────────────────────────────

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct {
	s  *Store
	tx *tx
}

func (r *InvoiceRepo) lookup(key string) *entity.Invoice {
	if r.tx != nil {
		if inv, ok := r.tx.invoices[key]; ok {
			return inv
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.invoices[key]
}

// Create inserta la factura; domain.ErrDuplicate si la clave existe.
func (r *InvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	key := invoiceKey(invoice.OwnerID, invoice.BusinessID, invoice.ID)
	if r.lookup(key) != nil {
		return domain.ErrDuplicate
	}
	c := cloneInvoice(invoice)
	if r.tx != nil {
		r.tx.invoices[key] = c
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[key] = c
	return nil
}

// GetByID devuelve una copia o nil si no existe.
func (r *InvoiceRepo) GetByID(_ context.Context, ownerID, businessID, id string) (*entity.Invoice, error) {
	if inv := r.lookup(invoiceKey(ownerID, businessID, id)); inv != nil {
		return cloneInvoice(inv), nil
	}
	return nil, nil
}

// GetForUpdate igual que GetByID: las transacciones ya están serializadas.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, ownerID, businessID, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, ownerID, businessID, id)
}

// UpdateSettlement actualiza campos de saldo.
func (r *InvoiceRepo) UpdateSettlement(_ context.Context, invoice *entity.Invoice) error {
	key := invoiceKey(invoice.OwnerID, invoice.BusinessID, invoice.ID)
	current := r.lookup(key)
	if current == nil {
		return domain.ErrNotFound
	}
	c := cloneInvoice(current)
	c.PaidAmount = invoice.PaidAmount
	c.Balance = invoice.Balance
	c.PaymentStatus = invoice.PaymentStatus
	c.UpdatedAt = invoice.UpdatedAt
	if r.tx != nil {
		r.tx.invoices[key] = c
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[key] = c
	return nil
}

// List aplica el filtro, ordena por creación descendente y limita.
func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.OwnerID != f.OwnerID || inv.BusinessID != f.BusinessID {
			continue
		}
		if f.DocumentType != "" && inv.DocumentType != f.DocumentType {
			continue
		}
		if f.PaymentStatus != "" &&
			ledger.NormalizePaymentStatus(inv.Balance, inv.PaymentStatus, inv.DueDate, f.AsOf) != f.PaymentStatus {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ── Abonos ───────────────────────────────────────────────────────────────────

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo abonos en memoria.
type PaymentRepo struct {
	s  *Store
	tx *tx
}

// Create agrega un abono.
func (r *PaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	c := *payment
	if r.tx != nil {
		r.tx.payments = append(r.tx.payments, &c)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := invoiceKey(c.OwnerID, c.BusinessID, c.InvoiceID)
	r.s.payments[k] = append(r.s.payments[k], &c)
	return nil
}

// ListByInvoice abonos confirmados por fecha de pago descendente.
func (r *PaymentRepo) ListByInvoice(_ context.Context, ownerID, businessID, invoiceID string) ([]*entity.Payment, error) {
	r.s.mu.RLock()
	src := r.s.payments[invoiceKey(ownerID, businessID, invoiceID)]
	out := make([]*entity.Payment, 0, len(src))
	for _, p := range src {
		c := *p
		out = append(out, &c)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PaymentDate.After(out[j].PaymentDate)
	})
	return out, nil
}

// ── Negocios ─────────────────────────────────────────────────────────────────

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo negocios en memoria.
type BusinessRepo struct {
	s  *Store
	tx *tx
}

// Create inserta el negocio; domain.ErrDuplicate si el usuario ya tiene ese RUC.
func (r *BusinessRepo) Create(_ context.Context, business *entity.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.businesses {
		if b.OwnerID == business.OwnerID && (b.RUC == business.RUC || b.ID == business.ID) {
			return domain.ErrDuplicate
		}
	}
	c := *business
	if r.tx != nil {
		r.tx.businesses[businessKey(c.OwnerID, c.ID)] = &c
		return nil
	}
	r.s.businesses[businessKey(c.OwnerID, c.ID)] = &c
	return nil
}

// GetByID devuelve una copia o nil.
func (r *BusinessRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Business, error) {
	key := businessKey(ownerID, id)
	if r.tx != nil {
		if b, ok := r.tx.businesses[key]; ok {
			c := *b
			return &c, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if b, ok := r.s.businesses[key]; ok {
		c := *b
		return &c, nil
	}
	return nil, nil
}

// ListByOwner negocios del usuario ordenados por nombre.
func (r *BusinessRepo) ListByOwner(_ context.Context, ownerID string) ([]*entity.Business, error) {
	r.s.mu.RLock()
	var out []*entity.Business
	for _, b := range r.s.businesses {
		if b.OwnerID == ownerID {
			c := *b
			out = append(out, &c)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Comprobantes ─────────────────────────────────────────────────────────────

var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo proyección legada en memoria.
type ComprobanteRepo struct {
	s  *Store
	tx *tx
}

// Create agrega la proyección.
func (r *ComprobanteRepo) Create(_ context.Context, c *entity.Comprobante) error {
	cp := *c
	if r.tx != nil {
		r.tx.comprobantes = append(r.tx.comprobantes, &cp)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comprobantes = append(r.s.comprobantes, &cp)
	return nil
}

// ── Suscripciones ────────────────────────────────────────────────────────────

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo suscripciones en memoria.
type SubscriptionRepo struct {
	s *Store
}

// Upsert crea o reemplaza la suscripción del usuario.
func (r *SubscriptionRepo) Upsert(_ context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *sub
	r.s.subscriptions[c.OwnerID] = &c
	return nil
}

// GetByOwner devuelve la suscripción o nil.
func (r *SubscriptionRepo) GetByOwner(_ context.Context, ownerID string) (*entity.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if sub, ok := r.s.subscriptions[ownerID]; ok {
		c := *sub
		return &c, nil
	}
	return nil, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func invoiceKey(ownerID, businessID, id string) string {
	return ownerID + "/" + businessID + "/" + id
}

func businessKey(ownerID, id string) string {
	return ownerID + "/" + id
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	if inv.DueDate != nil {
		d := *inv.DueDate
		c.DueDate = &d
	}
	if inv.CPE != nil {
		rec := *inv.CPE
		c.CPE = &rec
	}
	if inv.CPEBeta != nil {
		rec := *inv.CPEBeta
		c.CPEBeta = &rec
	}
	return &c
}
