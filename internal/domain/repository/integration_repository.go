package repository

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// IntegrationRepository define el puerto de persistencia para Integration.
type IntegrationRepository interface {
	Create(integration *entity.Integration) error
	GetByID(id, orgID string) (*entity.Integration, error)
	// FindSubscribed devuelve las integraciones habilitadas de tipo webhook
	// saliente suscritas al evento dado. Vacío no es error.
	FindSubscribed(orgID, eventType string) ([]*entity.Integration, error)
	Update(integration *entity.Integration) error
	// UpdateDeliveryStats actualiza los contadores rodantes tras un intento:
	// last_triggered_at siempre; success_count o failure_count+last_error según resultado.
	UpdateDeliveryStats(id string, success bool, lastError string, triggeredAt time.Time) error
	ListByOrg(orgID string, limit, offset int) ([]*entity.Integration, error)
}
