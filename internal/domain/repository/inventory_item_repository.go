package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia para InventoryItem.
// GetForUpdate/ListForUpdate bloquean las filas (SELECT FOR UPDATE) y solo
// tienen sentido dentro de una transacción del TxRunner: son el mecanismo que
// evita sobreventa bajo concurrencia.
type InventoryItemRepository interface {
	Create(item *entity.InventoryItem) error
	GetByID(id, orgID string) (*entity.InventoryItem, error)
	// GetForUpdate obtiene el artículo y bloquea su fila. Nil si no existe.
	GetForUpdate(id, orgID string) (*entity.InventoryItem, error)
	// ListForUpdate obtiene y bloquea todos los artículos del set en una sola
	// consulta (snapshot consistente). Los IDs inexistentes simplemente no
	// aparecen en el resultado; el caller decide cómo tratarlos.
	ListForUpdate(ids []string, orgID string) ([]*entity.InventoryItem, error)
	// UpdateStockLevel escribe el nuevo nivel. Solo debe llamarse desde el
	// motor de inventario, dentro de la transacción que tomó el lock.
	UpdateStockLevel(id string, level decimal.Decimal) error
	Update(item *entity.InventoryItem) error
	ListByOrg(orgID string, limit, offset int) ([]*entity.InventoryItem, error)
}
