package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, org_id, number, customer_name, status, subtotal, tax_total, grand_total, issued_at, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.OrgID, invoice.Number, invoice.CustomerName, invoice.Status,
		invoice.Subtotal, invoice.TaxTotal, invoice.GrandTotal,
		invoice.IssuedAt, invoice.CreatedByID, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de factura.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, org_id, invoice_id, inventory_item_id, description, quantity, unit_price, tax_rate, subtotal)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrgID, item.InvoiceID, item.InventoryItemID,
		item.Description, item.Quantity, item.UnitPrice, item.TaxRate, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("create invoice item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID. Nil si no existe.
func (r *InvoiceRepo) GetByID(id, orgID string) (*entity.Invoice, error) {
	query := `
		SELECT id, org_id, number, customer_name, status, subtotal, tax_total, grand_total,
		       issued_at, paid_at, cancelled_at, created_by_id, created_at, updated_at
		FROM invoices WHERE id = $1 AND org_id = $2`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id, orgID).Scan(
		&inv.ID, &inv.OrgID, &inv.Number, &inv.CustomerName, &inv.Status,
		&inv.Subtotal, &inv.TaxTotal, &inv.GrandTotal,
		&inv.IssuedAt, &inv.PaidAt, &inv.CancelledAt,
		&inv.CreatedByID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetForUpdate obtiene la cabecera bloqueando la fila. Solo tiene sentido
// dentro de una transacción; el lock se libera en commit o rollback.
func (r *InvoiceRepo) GetForUpdate(id, orgID string) (*entity.Invoice, error) {
	query := `
		SELECT id, org_id, number, customer_name, status, subtotal, tax_total, grand_total,
		       issued_at, paid_at, cancelled_at, created_by_id, created_at, updated_at
		FROM invoices WHERE id = $1 AND org_id = $2
		FOR UPDATE`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id, orgID).Scan(
		&inv.ID, &inv.OrgID, &inv.Number, &inv.CustomerName, &inv.Status,
		&inv.Subtotal, &inv.TaxTotal, &inv.GrandTotal,
		&inv.IssuedAt, &inv.PaidAt, &inv.CancelledAt,
		&inv.CreatedByID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return &inv, nil
}

// ListItemsByInvoice devuelve las líneas de una factura.
func (r *InvoiceRepo) ListItemsByInvoice(invoiceID, orgID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, org_id, invoice_id, COALESCE(inventory_item_id, ''), description, quantity, unit_price, tax_rate, subtotal
		FROM invoice_items WHERE invoice_id = $1 AND org_id = $2`
	rows, err := r.q.Query(context.Background(), query, invoiceID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(
			&it.ID, &it.OrgID, &it.InvoiceID, &it.InventoryItemID,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.TaxRate, &it.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateStatus actualiza estado y marcas de tiempo de la cabecera.
func (r *InvoiceRepo) UpdateStatus(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $3, paid_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1 AND org_id = $2`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.OrgID, invoice.Status,
		invoice.PaidAt, invoice.CancelledAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// Update escribe los campos editables de la cabecera.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $3, customer_name = $4, updated_at = $5
		WHERE id = $1 AND org_id = $2`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.OrgID, invoice.Number, invoice.CustomerName, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// ListByOrg lista las facturas de la organización.
func (r *InvoiceRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, org_id, number, customer_name, status, subtotal, tax_total, grand_total,
		       issued_at, paid_at, cancelled_at, created_by_id, created_at, updated_at
		FROM invoices WHERE org_id = $1
		ORDER BY issued_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.OrgID, &inv.Number, &inv.CustomerName, &inv.Status,
			&inv.Subtotal, &inv.TaxTotal, &inv.GrandTotal,
			&inv.IssuedAt, &inv.PaidAt, &inv.CancelledAt,
			&inv.CreatedByID, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}
