package entity

import "time"

// Estados de un intento de entrega de webhook.
const (
	DeliveryStatusSuccess = "SUCCESS"
	DeliveryStatusFailed  = "FAILED"
)

// WebhookDelivery es el registro append-only de un intento de entrega:
// un registro por intento, exitoso o fallido, nunca se actualiza.
type WebhookDelivery struct {
	ID             string
	OrgID          string
	IntegrationID  string
	EventType      string
	RequestURL     string
	RequestHeaders map[string]string // sin credenciales en claro
	RequestBody    string
	ResponseStatus int    // 0 si no hubo respuesta (error de transporte)
	ResponseBody   string // truncado
	DurationMS     int64
	Status         string // SUCCESS o FAILED
	ErrorMessage   string
	CreatedAt      time.Time
}
