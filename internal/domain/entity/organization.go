package entity

import "time"

// Organization es el tenant raíz: todos los registros del CRM se scopean por OrgID.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
