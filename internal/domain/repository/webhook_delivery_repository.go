package repository

import "github.com/jhoicas/crm-api/internal/domain/entity"

// WebhookDeliveryRepository define el puerto del log de entregas (append-only).
type WebhookDeliveryRepository interface {
	Create(delivery *entity.WebhookDelivery) error
	ListByIntegration(integrationID, orgID string, limit, offset int) ([]*entity.WebhookDelivery, error)
}
