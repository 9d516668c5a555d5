package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.IntegrationRepository = (*IntegrationRepo)(nil)

// IntegrationRepo implementación de IntegrationRepository sobre PostgreSQL.
// events se guarda como JSONB (array de strings) y config como JSONB.
type IntegrationRepo struct {
	q Querier
}

// NewIntegrationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIntegrationRepository(q Querier) *IntegrationRepo {
	return &IntegrationRepo{q: q}
}

// Create persiste una integración.
func (r *IntegrationRepo) Create(integration *entity.Integration) error {
	events, err := json.Marshal(integration.Events)
	if err != nil {
		return fmt.Errorf("serializar events: %w", err)
	}
	config, err := json.Marshal(integration.Config)
	if err != nil {
		return fmt.Errorf("serializar config: %w", err)
	}
	query := `
		INSERT INTO integrations (id, org_id, name, type, is_enabled, events, config, success_count, failure_count, last_triggered_at, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		integration.ID, integration.OrgID, integration.Name, integration.Type,
		integration.IsEnabled, events, config,
		integration.SuccessCount, integration.FailureCount,
		integration.LastTriggeredAt, integration.LastError,
		integration.CreatedAt, integration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create integration: %w", err)
	}
	return nil
}

func scanIntegration(row pgx.Row) (*entity.Integration, error) {
	var i entity.Integration
	var events, config []byte
	err := row.Scan(
		&i.ID, &i.OrgID, &i.Name, &i.Type, &i.IsEnabled, &events, &config,
		&i.SuccessCount, &i.FailureCount, &i.LastTriggeredAt, &i.LastError,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(events, &i.Events); err != nil {
		return nil, fmt.Errorf("deserializar events: %w", err)
	}
	if err := json.Unmarshal(config, &i.Config); err != nil {
		return nil, fmt.Errorf("deserializar config: %w", err)
	}
	return &i, nil
}

const integrationColumns = `id, org_id, name, type, is_enabled, events, config, success_count, failure_count, last_triggered_at, last_error, created_at, updated_at`

// GetByID obtiene una integración por ID. Nil si no existe.
func (r *IntegrationRepo) GetByID(id, orgID string) (*entity.Integration, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM integrations WHERE id = $1 AND org_id = $2`
	integ, err := scanIntegration(r.q.QueryRow(context.Background(), query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return integ, nil
}

// FindSubscribed devuelve las integraciones habilitadas de tipo webhook
// saliente suscritas al evento. El filtro de evento usa el operador JSONB @>.
func (r *IntegrationRepo) FindSubscribed(orgID, eventType string) ([]*entity.Integration, error) {
	eventJSON, err := json.Marshal([]string{eventType})
	if err != nil {
		return nil, fmt.Errorf("serializar filtro de evento: %w", err)
	}
	query := `
		SELECT ` + integrationColumns + `
		FROM integrations
		WHERE org_id = $1 AND is_enabled = true AND type = $2 AND events @> $3`
	rows, err := r.q.Query(context.Background(), query, orgID, entity.IntegrationTypeOutgoingWebhook, eventJSON)
	if err != nil {
		return nil, fmt.Errorf("find subscribed integrations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Integration
	for rows.Next() {
		integ, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		list = append(list, integ)
	}
	return list, rows.Err()
}

// Update actualiza nombre, eventos, config y habilitación.
func (r *IntegrationRepo) Update(integration *entity.Integration) error {
	events, err := json.Marshal(integration.Events)
	if err != nil {
		return fmt.Errorf("serializar events: %w", err)
	}
	config, err := json.Marshal(integration.Config)
	if err != nil {
		return fmt.Errorf("serializar config: %w", err)
	}
	query := `
		UPDATE integrations
		SET name = $3, is_enabled = $4, events = $5, config = $6, updated_at = $7
		WHERE id = $1 AND org_id = $2`
	_, err = r.q.Exec(context.Background(), query,
		integration.ID, integration.OrgID, integration.Name,
		integration.IsEnabled, events, config, integration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update integration: %w", err)
	}
	return nil
}

// UpdateDeliveryStats actualiza los contadores rodantes tras un intento de entrega.
func (r *IntegrationRepo) UpdateDeliveryStats(id string, success bool, lastError string, triggeredAt time.Time) error {
	var query string
	if success {
		query = `
			UPDATE integrations
			SET success_count = success_count + 1, last_triggered_at = $2, last_error = '', updated_at = now()
			WHERE id = $1`
		_, err := r.q.Exec(context.Background(), query, id, triggeredAt)
		if err != nil {
			return fmt.Errorf("update delivery stats: %w", err)
		}
		return nil
	}
	query = `
		UPDATE integrations
		SET failure_count = failure_count + 1, last_triggered_at = $2, last_error = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, triggeredAt, lastError)
	if err != nil {
		return fmt.Errorf("update delivery stats: %w", err)
	}
	return nil
}

// ListByOrg lista las integraciones de la organización.
func (r *IntegrationRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.Integration, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM integrations WHERE org_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Integration
	for rows.Next() {
		integ, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		list = append(list, integ)
	}
	return list, rows.Err()
}
