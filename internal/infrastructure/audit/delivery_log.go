package audit

import (
	"time"

	"github.com/jhoicas/crm-api/internal/application/webhook"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/logger"
)

var _ webhook.DeliveryLog = (*DeliveryLog)(nil)

// DeliveryLog es el sink best-effort de auditoría del despachador de
// webhooks. Los errores de persistencia se registran en el log estructurado
// y se descartan: la observabilidad nunca rompe la entrega ni el flujo de
// dominio que la disparó.
type DeliveryLog struct {
	deliveryRepo    repository.WebhookDeliveryRepository
	integrationRepo repository.IntegrationRepository
	logger          *logger.Logger
}

// NewDeliveryLog construye el sink.
func NewDeliveryLog(deliveryRepo repository.WebhookDeliveryRepository, integrationRepo repository.IntegrationRepository, lg *logger.Logger) *DeliveryLog {
	return &DeliveryLog{
		deliveryRepo:    deliveryRepo,
		integrationRepo: integrationRepo,
		logger:          lg,
	}
}

// LogDelivery persiste el intento de entrega; un fallo se loguea y se ignora.
func (s *DeliveryLog) LogDelivery(delivery *entity.WebhookDelivery) {
	if err := s.deliveryRepo.Create(delivery); err != nil {
		s.logger.Warn().
			Str("integration_id", delivery.IntegrationID).
			Str("event", delivery.EventType).
			Err(err).
			Msg("no se pudo persistir el registro de entrega")
	}
}

// RecordResult actualiza los contadores de la integración; un fallo se loguea y se ignora.
func (s *DeliveryLog) RecordResult(integrationID, orgID string, success bool, lastError string, triggeredAt time.Time) {
	if err := s.integrationRepo.UpdateDeliveryStats(integrationID, success, lastError, triggeredAt); err != nil {
		s.logger.Warn().
			Str("integration_id", integrationID).
			Err(err).
			Msg("no se pudieron actualizar los contadores de entrega")
	}
}
