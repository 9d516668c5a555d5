package dto

import "time"

// CreateLeadRequest alta de un lead.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Source  string `json:"source,omitempty"`
}

// UpdateLeadRequest edición parcial de un lead.
type UpdateLeadRequest struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status,omitempty"`
}

// LeadResponse lead para respuestas.
type LeadResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Company     string     `json:"company,omitempty"`
	Source      string     `json:"source,omitempty"`
	Status      string     `json:"status"`
	OwnerID     string     `json:"owner_id,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
