package ledger

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// inventario: o se aplican todos los cambios de la operación o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}
