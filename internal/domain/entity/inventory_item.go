package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem representa un producto almacenable de una organización.
// StockLevel admite cantidades fraccionarias (ej. kilogramos) y nunca puede
// quedar en negativo: solo lo muta el motor de inventario (ledger), nunca los
// callers directamente.
type InventoryItem struct {
	ID           string
	OrgID        string
	Name         string
	SKU          string          // código único por organización
	StockLevel   decimal.Decimal // nivel actual, >= 0 siempre
	ReorderLevel decimal.Decimal // umbral de reposición (señal de stock bajo)
	Unit         string          // unidad de presentación: "unidad", "kg", "l"
	UnitPrice    decimal.Decimal // precio de venta vigente
	IsActive     bool            // false = descontinuado (soft-delete)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowReorderLevel indica si el artículo está en o por debajo del punto de reorden.
func (i *InventoryItem) BelowReorderLevel() bool {
	return i.ReorderLevel.GreaterThan(decimal.Zero) && i.StockLevel.LessThanOrEqual(i.ReorderLevel)
}
