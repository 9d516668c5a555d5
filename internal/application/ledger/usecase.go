package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// StockLedgerUseCase aplica operaciones de stock como unidades de trabajo
// atómicas: deducción por venta, restauración por anulación y ajustes
// manuales. Cada operación corre en una transacción con bloqueo de fila
// (SELECT FOR UPDATE): dos deducciones concurrentes sobre el mismo artículo
// se serializan en el lock y la segunda revalida contra el nivel ya
// confirmado, por lo que nunca hay sobreventa.
type StockLedgerUseCase struct {
	txRunner TxRunner
}

// NewStockLedgerUseCase construye el motor de inventario.
func NewStockLedgerUseCase(txRunner TxRunner) *StockLedgerUseCase {
	return &StockLedgerUseCase{txRunner: txRunner}
}

// Actor identifica quién origina una operación de stock (usuario o sistema).
type Actor struct {
	ID   string
	Type string // entity.ActorTypeUser o entity.ActorTypeSystem
}

// DeductItem es una línea de deducción: artículo y cantidad solicitada (> 0).
type DeductItem struct {
	InventoryItemID string
	Quantity        decimal.Decimal
}

// DeductedItem detalle de una deducción aplicada.
type DeductedItem struct {
	InventoryItemID string
	SKU             string
	Quantity        decimal.Decimal
	NewLevel        decimal.Decimal
	UnitPrice       decimal.Decimal // precio vigente al momento de la venta, congelado en el movimiento
}

// DeductResult resultado de DeductStock.
type DeductResult struct {
	DeductedItems []DeductedItem
	// LowStockItemIDs artículos que quedaron en o bajo su punto de reorden.
	LowStockItemIDs []string
}

// RestoreResult resultado de RestoreStock.
type RestoreResult struct {
	RestoredItemCount int
}

// AdjustResult resultado de AdjustStock.
type AdjustResult struct {
	PreviousLevel decimal.Decimal
	NewLevel      decimal.Decimal
}

// DeductStock descuenta stock por venta en una sola transacción: valida todas
// las líneas contra un snapshot bloqueado y solo entonces escribe. Si
// cualquier artículo no existe, está inactivo o no alcanza el stock, la
// operación completa falla sin escribir nada.
func (uc *StockLedgerUseCase) DeductStock(ctx context.Context, orgID, invoiceID string, actor Actor, items []DeductItem) (*DeductResult, error) {
	var result *DeductResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		_ repository.InvoiceRepository,
	) error {
		r, err := uc.DeductStockInTx(itemRepo, movRepo, orgID, invoiceID, actor, items)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeductStockInTx ejecuta la deducción usando los repositorios del caller
// (misma transacción). Lo usa billing para que factura y deducción sean una
// sola unidad de trabajo. Si retorna error el caller debe hacer rollback.
func (uc *StockLedgerUseCase) DeductStockInTx(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	orgID, invoiceID string,
	actor Actor,
	items []DeductItem,
) (*DeductResult, error) {
	if orgID == "" || invoiceID == "" || len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	// Las líneas repetidas del mismo artículo se consolidan en una sola
	// deducción: la validación de stock y el movimiento operan sobre la
	// cantidad total, nunca línea por línea contra el mismo snapshot.
	merged := make([]DeductItem, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if it.InventoryItemID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if i, ok := pos[it.InventoryItemID]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(it.Quantity)
			continue
		}
		pos[it.InventoryItemID] = len(merged)
		merged = append(merged, it)
	}
	ids := make([]string, 0, len(merged))
	for _, it := range merged {
		ids = append(ids, it.InventoryItemID)
	}

	// Snapshot consistente: bloquea todas las filas en una sola consulta.
	locked, err := itemRepo.ListForUpdate(ids, orgID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.InventoryItem, len(locked))
	for _, item := range locked {
		byID[item.ID] = item
	}

	// Preflight sobre el snapshot completo, antes de cualquier escritura.
	var missing, inactive []string
	var shortfalls []domain.StockShortfall
	for _, it := range merged {
		item, ok := byID[it.InventoryItemID]
		if !ok {
			missing = append(missing, it.InventoryItemID)
			continue
		}
		if !item.IsActive {
			inactive = append(inactive, item.ID)
			continue
		}
		if item.StockLevel.LessThan(it.Quantity) {
			shortfalls = append(shortfalls, domain.StockShortfall{
				ItemID:    item.ID,
				Available: item.StockLevel,
				Requested: it.Quantity,
			})
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ItemNotFoundError{ItemIDs: missing}
	}
	if len(inactive) > 0 {
		return nil, &domain.ItemInactiveError{ItemIDs: inactive}
	}
	if len(shortfalls) > 0 {
		return nil, &domain.InsufficientStockError{Shortfalls: shortfalls}
	}

	now := time.Now()
	result := &DeductResult{}
	for _, it := range merged {
		item := byID[it.InventoryItemID]
		previous := item.StockLevel
		newLevel := previous.Sub(it.Quantity)
		if err := itemRepo.UpdateStockLevel(item.ID, newLevel); err != nil {
			return nil, err
		}
		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			OrgID:           orgID,
			InventoryItemID: item.ID,
			Type:            entity.MovementTypeSALE,
			Quantity:        it.Quantity.Neg(),
			PreviousLevel:   previous,
			NewLevel:        newLevel,
			UnitPrice:       item.UnitPrice,
			ReferenceType:   entity.ReferenceTypeInvoice,
			ReferenceID:     invoiceID,
			CreatedByID:     actor.ID,
			CreatedByType:   actor.Type,
			CreatedAt:       now,
		}
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		item.StockLevel = newLevel
		result.DeductedItems = append(result.DeductedItems, DeductedItem{
			InventoryItemID: item.ID,
			SKU:             item.SKU,
			Quantity:        it.Quantity,
			NewLevel:        newLevel,
			UnitPrice:       item.UnitPrice,
		})
		if item.BelowReorderLevel() {
			result.LowStockItemIDs = append(result.LowStockItemIDs, item.ID)
		}
	}
	return result, nil
}

// RestoreStock devuelve al inventario las líneas de una factura (anulación).
// Las líneas sin vínculo a inventario se omiten. La idempotencia es contrato
// del caller: llamarlo dos veces para la misma factura acredita doble.
func (uc *StockLedgerUseCase) RestoreStock(ctx context.Context, invoiceID, orgID string, actor Actor) (*RestoreResult, error) {
	if invoiceID == "" || orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *RestoreResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		r, err := uc.RestoreStockInTx(itemRepo, movRepo, invoiceRepo, invoiceID, orgID, actor)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RestoreStockInTx ejecuta la restauración usando los repositorios del caller
// (misma transacción que la anulación de la factura).
func (uc *StockLedgerUseCase) RestoreStockInTx(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	invoiceID, orgID string,
	actor Actor,
) (*RestoreResult, error) {
	lines, err := invoiceRepo.ListItemsByInvoice(invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	restored := 0
	for _, line := range lines {
		if line.InventoryItemID == "" {
			continue // línea sin inventario
		}
		item, err := itemRepo.GetForUpdate(line.InventoryItemID, orgID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue // el artículo ya no existe; no hay fila que acreditar
		}
		previous := item.StockLevel
		newLevel := previous.Add(line.Quantity)
		if err := itemRepo.UpdateStockLevel(item.ID, newLevel); err != nil {
			return nil, err
		}
		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			OrgID:           orgID,
			InventoryItemID: item.ID,
			Type:            entity.MovementTypeRETURN,
			Quantity:        line.Quantity,
			PreviousLevel:   previous,
			NewLevel:        newLevel,
			UnitPrice:       line.UnitPrice,
			ReferenceType:   entity.ReferenceTypeInvoice,
			ReferenceID:     invoiceID,
			CreatedByID:     actor.ID,
			CreatedByType:   actor.Type,
			Notes:           "restauración por anulación de factura",
			CreatedAt:       now,
		}
		if err := movRepo.Create(mov); err != nil {
			return nil, err
		}
		restored++
	}
	return &RestoreResult{RestoredItemCount: restored}, nil
}

// AdjustStock aplica un ajuste manual con delta firmado (positivo entrada,
// negativo salida). Rechaza con InvalidAdjustment si el resultado fuera
// negativo, reportando nivel actual y delta.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, itemID, orgID string, quantity decimal.Decimal, movementType string, actor Actor, reason string) (*AdjustResult, error) {
	switch movementType {
	case entity.MovementTypeRESTOCK, entity.MovementTypeDAMAGE, entity.MovementTypeCORRECTION:
	default:
		return nil, domain.ErrInvalidInput
	}
	if itemID == "" || orgID == "" || quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
		_ repository.InvoiceRepository,
	) error {
		item, err := itemRepo.GetForUpdate(itemID, orgID)
		if err != nil {
			return err
		}
		if item == nil {
			return &domain.ItemNotFoundError{ItemIDs: []string{itemID}}
		}
		if !item.IsActive {
			return &domain.ItemInactiveError{ItemIDs: []string{itemID}}
		}
		previous := item.StockLevel
		newLevel := previous.Add(quantity)
		if newLevel.IsNegative() {
			return &domain.InvalidAdjustmentError{ItemID: itemID, CurrentLevel: previous, Quantity: quantity}
		}
		if err := itemRepo.UpdateStockLevel(itemID, newLevel); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			OrgID:           orgID,
			InventoryItemID: itemID,
			Type:            movementType,
			Quantity:        quantity,
			PreviousLevel:   previous,
			NewLevel:        newLevel,
			UnitPrice:       item.UnitPrice,
			ReferenceType:   entity.ReferenceTypeManual,
			ReferenceID:     "",
			CreatedByID:     actor.ID,
			CreatedByType:   actor.Type,
			Reason:          reason,
			CreatedAt:       time.Now(),
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		result = &AdjustResult{PreviousLevel: previous, NewLevel: newLevel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
