package billing

import (
	"context"

	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repos de inventario y facturación: la escritura de la factura y la
// deducción/restauración de stock son una sola unidad de trabajo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// StockLedger es la integración facturación-inventario: deducción y
// restauración usando los repositorios del caller (misma transacción).
// Si retorna error (ej. ErrInsufficientStock) el caller hace rollback.
type StockLedger interface {
	DeductStockInTx(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		orgID, invoiceID string,
		actor ledger.Actor,
		items []ledger.DeductItem,
	) (*ledger.DeductResult, error)
	RestoreStockInTx(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		invoiceID, orgID string,
		actor ledger.Actor,
	) (*ledger.RestoreResult, error)
}

// EventNotifier notifica eventos de factura a los webhooks suscritos
// (fire-and-forget, fuera de la transacción). Lo implementa webhook.Notifier.
type EventNotifier interface {
	InvoiceCreated(inv *entity.Invoice)
	InvoiceUpdated(inv *entity.Invoice)
	InvoicePaid(inv *entity.Invoice)
	InvoiceCancelled(inv *entity.Invoice)
	LowStock(orgID string, itemIDs []string)
}
