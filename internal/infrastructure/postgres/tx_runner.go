package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and billing.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: los
// repositorios que recibe el callback están atados a la tx, por lo que los
// SELECT FOR UPDATE del motor de inventario mantienen el lock hasta el
// Commit o Rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewInventoryItemRepository(tx)
	movRepo := NewStockMovementRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(itemRepo, movRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
