package repository

import "github.com/jhoicas/crm-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndOrg(email, orgID string) (*entity.User, error)
}

// OrganizationRepository define el puerto de persistencia para Organization.
type OrganizationRepository interface {
	Create(org *entity.Organization) error
	GetByID(id string) (*entity.Organization, error)
}
