package httpclient

import (
	"net/http"
	"time"

	"github.com/jhoicas/crm-api/internal/application/webhook"
)

var _ webhook.Doer = (*http.Client)(nil)

// NewWebhookClient arma el cliente HTTP para entregas salientes. El timeout
// del cliente es la única cota de tiempo por entrega: cubre conexión, TLS,
// escritura del cuerpo y lectura de la respuesta.
func NewWebhookClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = webhook.DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}
