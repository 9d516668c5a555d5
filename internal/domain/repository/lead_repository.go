package repository

import "github.com/jhoicas/crm-api/internal/domain/entity"

// LeadRepository define el puerto de persistencia para Lead.
type LeadRepository interface {
	Create(lead *entity.Lead) error
	GetByID(id, orgID string) (*entity.Lead, error)
	Update(lead *entity.Lead) error
	ListByOrg(orgID string, limit, offset int) ([]*entity.Lead, error)
}
