package entity

import "time"

// Estados de un lead dentro del pipeline comercial.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusQualified = "QUALIFIED"
	LeadStatusConverted = "CONVERTED"
	LeadStatusLost      = "LOST"
)

// Lead es un prospecto comercial de la organización.
type Lead struct {
	ID          string
	OrgID       string
	Name        string
	Email       string
	Phone       string
	Company     string
	Source      string
	Status      string
	OwnerID     string // usuario asignado
	ConvertedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
