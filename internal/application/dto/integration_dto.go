package dto

import "time"

// IntegrationConfigRequest configuración de conexión de un webhook saliente.
// AuthPayload llega en claro y se cifra antes de persistir.
type IntegrationConfigRequest struct {
	URL         string            `json:"url"`
	AuthType    string            `json:"auth_type"`
	AuthPayload string            `json:"auth_payload,omitempty"`
	HeaderName  string            `json:"header_name,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// CreateIntegrationRequest alta de integración de webhook saliente.
type CreateIntegrationRequest struct {
	Name   string                   `json:"name"`
	Events []string                 `json:"events"`
	Config IntegrationConfigRequest `json:"config"`
}

// UpdateIntegrationRequest edición parcial de una integración.
type UpdateIntegrationRequest struct {
	Name      string                    `json:"name,omitempty"`
	Events    []string                  `json:"events,omitempty"`
	IsEnabled *bool                     `json:"is_enabled,omitempty"`
	Config    *IntegrationConfigRequest `json:"config,omitempty"`
}

// IntegrationResponse integración para respuestas; nunca expone AuthPayload.
type IntegrationResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	IsEnabled       bool       `json:"is_enabled"`
	Events          []string   `json:"events"`
	URL             string     `json:"url"`
	AuthType        string     `json:"auth_type"`
	SuccessCount    int        `json:"success_count"`
	FailureCount    int        `json:"failure_count"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

// WebhookDeliveryResponse registro de entrega para respuestas.
type WebhookDeliveryResponse struct {
	ID             string    `json:"id"`
	EventType      string    `json:"event_type"`
	RequestURL     string    `json:"request_url"`
	ResponseStatus int       `json:"response_status,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
