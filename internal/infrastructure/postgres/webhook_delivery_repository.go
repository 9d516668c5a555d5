package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.WebhookDeliveryRepository = (*WebhookDeliveryRepo)(nil)

// WebhookDeliveryRepo implementación append-only del log de entregas.
type WebhookDeliveryRepo struct {
	q Querier
}

// NewWebhookDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWebhookDeliveryRepository(q Querier) *WebhookDeliveryRepo {
	return &WebhookDeliveryRepo{q: q}
}

// Create persiste un intento de entrega.
func (r *WebhookDeliveryRepo) Create(delivery *entity.WebhookDelivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	headers, err := json.Marshal(delivery.RequestHeaders)
	if err != nil {
		return fmt.Errorf("serializar headers: %w", err)
	}
	query := `
		INSERT INTO webhook_deliveries (id, org_id, integration_id, event_type, request_url, request_headers, request_body, response_status, response_body, duration_ms, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		delivery.ID, delivery.OrgID, delivery.IntegrationID, delivery.EventType,
		delivery.RequestURL, headers, delivery.RequestBody,
		delivery.ResponseStatus, delivery.ResponseBody, delivery.DurationMS,
		delivery.Status, delivery.ErrorMessage, delivery.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create webhook delivery: %w", err)
	}
	return nil
}

// ListByIntegration devuelve los intentos de una integración, más recientes primero.
func (r *WebhookDeliveryRepo) ListByIntegration(integrationID, orgID string, limit, offset int) ([]*entity.WebhookDelivery, error) {
	query := `
		SELECT id, org_id, integration_id, event_type, request_url, request_headers, request_body, response_status, response_body, duration_ms, status, error_message, created_at
		FROM webhook_deliveries
		WHERE integration_id = $1 AND org_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, integrationID, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list webhook deliveries: %w", err)
	}
	defer rows.Close()
	var list []*entity.WebhookDelivery
	for rows.Next() {
		var d entity.WebhookDelivery
		var headers []byte
		if err := rows.Scan(
			&d.ID, &d.OrgID, &d.IntegrationID, &d.EventType,
			&d.RequestURL, &headers, &d.RequestBody,
			&d.ResponseStatus, &d.ResponseBody, &d.DurationMS,
			&d.Status, &d.ErrorMessage, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		if len(headers) > 0 {
			if err := json.Unmarshal(headers, &d.RequestHeaders); err != nil {
				return nil, fmt.Errorf("deserializar headers: %w", err)
			}
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
