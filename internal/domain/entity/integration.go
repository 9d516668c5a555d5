package entity

import "time"

// Tipos de integración. Solo las de tipo webhook saliente son elegibles
// para el despachador de eventos.
const (
	IntegrationTypeOutgoingWebhook = "outgoing_webhook"
)

// Esquemas de autenticación soportados para webhooks salientes.
const (
	AuthTypeNone   = "none"
	AuthTypeBearer = "bearer"
	AuthTypeAPIKey = "api_key"
	AuthTypeBasic  = "basic"
)

// IntegrationConfig es la configuración de conexión de un webhook saliente.
// AuthPayload se guarda cifrado en reposo (pkg/crypto) y se descifra justo
// antes de usarse; nunca se registra en claro.
type IntegrationConfig struct {
	URL         string            `json:"url"`
	AuthType    string            `json:"auth_type"`             // none, bearer, api_key, basic
	AuthPayload string            `json:"auth_payload"`          // cifrado: token, api key o user:pass según esquema
	HeaderName  string            `json:"header_name,omitempty"` // para api_key; vacío = X-Api-Key
	Headers     map[string]string `json:"headers,omitempty"`     // headers personalizados adicionales
}

// Integration es una suscripción de webhook saliente de una organización:
// endpoint, eventos suscritos y contadores rodantes de entregas.
type Integration struct {
	ID              string
	OrgID           string
	Name            string
	Type            string // debe ser outgoing_webhook para ser elegible
	IsEnabled       bool
	Events          []string // identificadores de evento suscritos, ej. "invoice.created"
	Config          IntegrationConfig
	SuccessCount    int
	FailureCount    int
	LastTriggeredAt *time.Time
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SubscribedTo indica si la integración está suscrita a un evento.
func (i *Integration) SubscribedTo(eventType string) bool {
	for _, e := range i.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
