package repository

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para StockMovement.
// Es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id, orgID string) (*entity.StockMovement, error)
	ListByItem(itemID, orgID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(referenceType, referenceID, orgID string) ([]*entity.StockMovement, error)
}
