package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInventoryItemRequest alta de un artículo de inventario.
type CreateInventoryItemRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	StockLevel   decimal.Decimal `json:"stock_level"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// AdjustStockRequest ajuste manual de stock: quantity con signo
// (positivo entrada, negativo salida), type RESTOCK|DAMAGE|CORRECTION.
type AdjustStockRequest struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Type            string          `json:"type"`
	Reason          string          `json:"reason"`
}

// AdjustStockResponse niveles antes y después del ajuste.
type AdjustStockResponse struct {
	Success       bool            `json:"success"`
	PreviousLevel decimal.Decimal `json:"previous_level"`
	NewLevel      decimal.Decimal `json:"new_level"`
}

// InventoryItemResponse artículo para respuestas.
type InventoryItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	StockLevel   decimal.Decimal `json:"stock_level"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	IsActive     bool            `json:"is_active"`
}

// StockMovementResponse movimiento del ledger para respuestas.
type StockMovementResponse struct {
	ID              string          `json:"id"`
	InventoryItemID string          `json:"inventory_item_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousLevel   decimal.Decimal `json:"previous_level"`
	NewLevel        decimal.Decimal `json:"new_level"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	CreatedByID     string          `json:"created_by_id"`
	CreatedByType   string          `json:"created_by_type"`
	Reason          string          `json:"reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
