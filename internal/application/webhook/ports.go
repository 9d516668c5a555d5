package webhook

import (
	"net/http"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// IntegrationFinder busca las suscripciones elegibles para un evento.
type IntegrationFinder interface {
	FindSubscribed(orgID, eventType string) ([]*entity.Integration, error)
}

// DeliveryLog es la frontera best-effort de observabilidad del despachador.
// Sus métodos no retornan error a propósito: un fallo del log o de los
// contadores jamás debe romper la entrega ni el flujo de dominio que la
// originó (propiedad de fallo contenido, forzada por construcción).
type DeliveryLog interface {
	LogDelivery(delivery *entity.WebhookDelivery)
	RecordResult(integrationID, orgID string, success bool, lastError string, triggeredAt time.Time)
}

// Doer abstrae el cliente HTTP para poder fijar timeouts y falsificarlo en tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Decrypter descifra credenciales guardadas en reposo. SafeDecrypt tolera
// entrada ya en claro o malformada: devuelve el texto tal cual o vacío,
// nunca falla hacia el caller.
type Decrypter interface {
	SafeDecrypt(value string) string
}
