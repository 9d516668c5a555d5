package entity

import "time"

// Roles de usuario para RBAC.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// User es un usuario de la organización.
type User struct {
	ID           string
	OrgID        string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin, manager, agent
	Status       string // active, disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
