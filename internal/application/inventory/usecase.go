package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// ItemUseCase maneja el catálogo de artículos y la consulta del historial de
// movimientos. Las mutaciones de stock NO pasan por aquí: el nivel solo lo
// cambia el motor de inventario (paquete ledger).
type ItemUseCase struct {
	itemRepo repository.InventoryItemRepository
	movRepo  repository.StockMovementRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(itemRepo repository.InventoryItemRepository, movRepo repository.StockMovementRepository) *ItemUseCase {
	return &ItemUseCase{itemRepo: itemRepo, movRepo: movRepo}
}

// CreateItem da de alta un artículo con su nivel inicial.
func (uc *ItemUseCase) CreateItem(ctx context.Context, orgID string, in dto.CreateInventoryItemRequest) (*entity.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if orgID == "" || name == "" || sku == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.StockLevel.IsNegative() || in.ReorderLevel.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unidad"
	}
	now := time.Now()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		OrgID:        orgID,
		Name:         name,
		SKU:          sku,
		StockLevel:   in.StockLevel,
		ReorderLevel: in.ReorderLevel,
		Unit:         unit,
		UnitPrice:    in.UnitPrice,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem obtiene un artículo por ID dentro de la organización.
func (uc *ItemUseCase) GetItem(ctx context.Context, itemID, orgID string) (*entity.InventoryItem, error) {
	if itemID == "" || orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.ItemNotFoundError{ItemIDs: []string{itemID}}
	}
	return item, nil
}

// ListItems lista el catálogo de la organización.
func (uc *ItemUseCase) ListItems(ctx context.Context, orgID string, limit, offset int) ([]*entity.InventoryItem, error) {
	if orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.itemRepo.ListByOrg(orgID, limit, offset)
}

// DeactivateItem marca el artículo como descontinuado (soft-delete). El
// historial de movimientos se conserva intacto.
func (uc *ItemUseCase) DeactivateItem(ctx context.Context, itemID, orgID string) (*entity.InventoryItem, error) {
	item, err := uc.GetItem(ctx, itemID, orgID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return item, nil
	}
	item.IsActive = false
	item.UpdatedAt = time.Now()
	if err := uc.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListMovements devuelve el historial de movimientos de un artículo,
// opcionalmente acotado por fechas. El historial es inmutable: es la fuente
// de auditoría del ledger.
func (uc *ItemUseCase) ListMovements(ctx context.Context, itemID, orgID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if itemID == "" || orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.ItemNotFoundError{ItemIDs: []string{itemID}}
	}
	return uc.movRepo.ListByItem(itemID, orgID, from, to, limit, offset)
}

// ListMovementsByReference devuelve los movimientos generados por una
// referencia concreta (ej. todos los de una factura).
func (uc *ItemUseCase) ListMovementsByReference(ctx context.Context, referenceType, referenceID, orgID string) ([]*entity.StockMovement, error) {
	if referenceType == "" || referenceID == "" || orgID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByReference(referenceType, referenceID, orgID)
}
