package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// InvoiceUseCase crea, cobra y anula facturas. Las líneas con vínculo a
// inventario pasan por el motor de stock dentro de la misma transacción que
// escribe la factura; las notificaciones de webhook salen después del commit
// y nunca afectan el resultado de la operación de dominio.
type InvoiceUseCase struct {
	txRunner    TxRunner
	stockLedger StockLedger
	invoiceRepo repository.InvoiceRepository
	notifier    EventNotifier
}

// NewInvoiceUseCase construye el caso de uso de facturación.
func NewInvoiceUseCase(txRunner TxRunner, stockLedger StockLedger, invoiceRepo repository.InvoiceRepository, notifier EventNotifier) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		stockLedger: stockLedger,
		invoiceRepo: invoiceRepo,
		notifier:    notifier,
	}
}

// CreateInvoice valida las líneas, descuenta stock de las vinculadas a
// inventario y guarda cabecera y detalle, todo en una transacción. El precio
// de venta por línea queda congelado al facturar.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, orgID, userID string, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if orgID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if !item.Quantity.GreaterThan(decimal.Zero) || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if item.InventoryItemID == "" && item.Description == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	invoiceID := uuid.New().String() // referencia de los movimientos de stock
	actor := ledger.Actor{ID: userID, Type: entity.ActorTypeUser}

	var inv *entity.Invoice
	var lowStock []string
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		// 1) Deducción de inventario para las líneas vinculadas. Si falla
		// (sin stock, artículo inactivo), rollback de toda la factura.
		var deductItems []ledger.DeductItem
		for _, item := range in.Items {
			if item.InventoryItemID == "" {
				continue
			}
			deductItems = append(deductItems, ledger.DeductItem{
				InventoryItemID: item.InventoryItemID,
				Quantity:        item.Quantity,
			})
		}
		priceByItem := make(map[string]decimal.Decimal)
		if len(deductItems) > 0 {
			res, err := uc.stockLedger.DeductStockInTx(itemRepo, movRepo, orgID, invoiceID, actor, deductItems)
			if err != nil {
				return err
			}
			for _, d := range res.DeductedItems {
				priceByItem[d.InventoryItemID] = d.UnitPrice
			}
			lowStock = res.LowStockItemIDs
		}

		// 2) Totales con aritmética decimal.
		var subtotal, taxTotal decimal.Decimal
		lines := make([]*entity.InvoiceItem, 0, len(in.Items))
		for _, item := range in.Items {
			unitPrice := item.UnitPrice
			if unitPrice.IsZero() {
				if p, ok := priceByItem[item.InventoryItemID]; ok {
					unitPrice = p
				}
			}
			lineSubtotal := item.Quantity.Mul(unitPrice)
			subtotal = subtotal.Add(lineSubtotal)
			taxTotal = taxTotal.Add(lineSubtotal.Mul(item.TaxRate))
			lines = append(lines, &entity.InvoiceItem{
				ID:              uuid.New().String(),
				OrgID:           orgID,
				InvoiceID:       invoiceID,
				InventoryItemID: item.InventoryItemID,
				Description:     item.Description,
				Quantity:        item.Quantity,
				UnitPrice:       unitPrice,
				TaxRate:         item.TaxRate,
				Subtotal:        lineSubtotal,
			})
		}

		number := in.Number
		if number == "" {
			number = fmt.Sprintf("INV-%d", now.Unix())
		}
		inv = &entity.Invoice{
			ID:           invoiceID,
			OrgID:        orgID,
			Number:       number,
			CustomerName: in.CustomerName,
			Status:       entity.InvoiceStatusIssued,
			Subtotal:     subtotal,
			TaxTotal:     taxTotal,
			GrandTotal:   subtotal.Add(taxTotal),
			IssuedAt:     now,
			CreatedByID:  userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		// 3) Persistir cabecera y líneas en la misma tx que la deducción.
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		for _, line := range lines {
			if err := invoiceRepo.CreateItem(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit: notificaciones best-effort, independientes del dominio.
	uc.notifier.InvoiceCreated(inv)
	uc.notifier.LowStock(orgID, lowStock)
	return inv, nil
}

// CancelInvoice pasa la factura a CANCELLED y restaura el stock de sus líneas
// en la misma transacción. El guard de estado se evalúa con la fila de la
// cabecera bloqueada (GetForUpdate): dos anulaciones concurrentes se
// serializan en el lock y la segunda ve CANCELLED, por lo que el stock nunca
// se acredita dos veces.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, invoiceID, orgID, userID string) (*entity.Invoice, error) {
	if invoiceID == "" || orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	actor := ledger.Actor{ID: userID, Type: entity.ActorTypeUser}
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(invoiceID, orgID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status == entity.InvoiceStatusCancelled {
			return domain.ErrConflict
		}
		if _, err := uc.stockLedger.RestoreStockInTx(itemRepo, movRepo, invoiceRepo, invoiceID, orgID, actor); err != nil {
			return err
		}
		now := time.Now()
		inv.Status = entity.InvoiceStatusCancelled
		inv.CancelledAt = &now
		inv.UpdatedAt = now
		return invoiceRepo.UpdateStatus(inv)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.InvoiceCancelled(inv)
	return inv, nil
}

// UpdateInvoice edita los datos de cabecera (cliente, número) de una factura
// no anulada, sin tocar líneas ni inventario, y notifica invoice.updated.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, invoiceID, orgID string, in dto.UpdateInvoiceRequest) (*entity.Invoice, error) {
	if invoiceID == "" || orgID == "" || (in.CustomerName == "" && in.Number == "") {
		return nil, domain.ErrInvalidInput
	}
	inv, err := uc.invoiceRepo.GetByID(invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return nil, domain.ErrConflict
	}
	if in.CustomerName != "" {
		inv.CustomerName = in.CustomerName
	}
	if in.Number != "" {
		inv.Number = in.Number
	}
	inv.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(inv); err != nil {
		return nil, err
	}
	uc.notifier.InvoiceUpdated(inv)
	return inv, nil
}

// PayInvoice marca la factura como pagada y notifica invoice.paid.
func (uc *InvoiceUseCase) PayInvoice(ctx context.Context, invoiceID, orgID string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Status != entity.InvoiceStatusIssued {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	inv.Status = entity.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now
	if err := uc.invoiceRepo.UpdateStatus(inv); err != nil {
		return nil, err
	}
	uc.notifier.InvoicePaid(inv)
	return inv, nil
}

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, invoiceID, orgID string) (*entity.Invoice, []*entity.InvoiceItem, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID, orgID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.ListItemsByInvoice(invoiceID, orgID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}
