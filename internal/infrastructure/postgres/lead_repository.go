package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

const leadColumns = `id, org_id, name, email, phone, company, source, status, owner_id, converted_at, created_at, updated_at`

// LeadRepo implementación de LeadRepository sobre PostgreSQL.
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

// Create persiste un lead.
func (r *LeadRepo) Create(lead *entity.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		lead.ID, lead.OrgID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Source, lead.Status, lead.OwnerID, lead.ConvertedAt,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// GetByID obtiene un lead por ID. Nil si no existe.
func (r *LeadRepo) GetByID(id, orgID string) (*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads WHERE id = $1 AND org_id = $2`
	var l entity.Lead
	err := r.q.QueryRow(context.Background(), query, id, orgID).Scan(
		&l.ID, &l.OrgID, &l.Name, &l.Email, &l.Phone, &l.Company,
		&l.Source, &l.Status, &l.OwnerID, &l.ConvertedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

// Update actualiza los campos del lead.
func (r *LeadRepo) Update(lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET name = $3, email = $4, phone = $5, company = $6, source = $7,
		    status = $8, owner_id = $9, converted_at = $10, updated_at = $11
		WHERE id = $1 AND org_id = $2`
	_, err := r.q.Exec(context.Background(), query,
		lead.ID, lead.OrgID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Source, lead.Status, lead.OwnerID, lead.ConvertedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return nil
}

// ListByOrg lista los leads de la organización.
func (r *LeadRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads WHERE org_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lead
	for rows.Next() {
		var l entity.Lead
		if err := rows.Scan(
			&l.ID, &l.OrgID, &l.Name, &l.Email, &l.Phone, &l.Company,
			&l.Source, &l.Status, &l.OwnerID, &l.ConvertedAt,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
