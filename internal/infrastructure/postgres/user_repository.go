package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, org_id, email, password_hash, name, role, status, created_at, updated_at`

// UserRepo implementación de UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un usuario.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.OrgID, user.Email, user.PasswordHash,
		user.Name, user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) scanOne(query string, args ...any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&u.ID, &u.OrgID, &u.Email, &u.PasswordHash,
		&u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID. Nil si no existe.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.scanOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail busca un usuario por email. Nil si no existe.
func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.scanOne(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByEmailAndOrg busca un usuario por email dentro de una organización.
func (r *UserRepo) GetByEmailAndOrg(email, orgID string) (*entity.User, error) {
	return r.scanOne(`SELECT `+userColumns+` FROM users WHERE email = $1 AND org_id = $2`, email, orgID)
}

var _ repository.OrganizationRepository = (*OrganizationRepo)(nil)

// OrganizationRepo implementación de OrganizationRepository sobre PostgreSQL.
type OrganizationRepo struct {
	q Querier
}

// NewOrganizationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrganizationRepository(q Querier) *OrganizationRepo {
	return &OrganizationRepo{q: q}
}

// Create persiste una organización.
func (r *OrganizationRepo) Create(org *entity.Organization) error {
	query := `INSERT INTO organizations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, org.ID, org.Name, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// GetByID obtiene una organización por ID. Nil si no existe.
func (r *OrganizationRepo) GetByID(id string) (*entity.Organization, error) {
	query := `SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`
	var o entity.Organization
	err := r.q.QueryRow(context.Background(), query, id).Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}
