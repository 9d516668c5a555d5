package repository

import "github.com/jhoicas/crm-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	GetByID(id, orgID string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila de la cabecera (SELECT FOR UPDATE); las
	// transiciones de estado concurrentes se serializan sobre ese lock.
	GetForUpdate(id, orgID string) (*entity.Invoice, error)
	// Update escribe los campos editables de la cabecera (número, cliente).
	Update(invoice *entity.Invoice) error
	// ListItemsByInvoice devuelve todas las líneas de la factura; el motor de
	// inventario filtra las que tienen InventoryItemID para restaurar stock.
	ListItemsByInvoice(invoiceID, orgID string) ([]*entity.InvoiceItem, error)
	UpdateStatus(invoice *entity.Invoice) error
	ListByOrg(orgID string, limit, offset int) ([]*entity.Invoice, error)
}
