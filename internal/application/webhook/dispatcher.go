package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// Headers de contrato: siempre presentes y no sobreescribibles por la config.
const (
	HeaderSource    = "X-Webhook-Source"
	HeaderEvent     = "X-Webhook-Event"
	HeaderTimestamp = "X-Webhook-Timestamp"

	sourceMarker = "crm-core"
	redactedMark = "[REDACTED]"

	// DefaultTimeout timeout duro por entrega.
	DefaultTimeout = 30 * time.Second

	maxLoggedBody = 2048
)

// WebhookPayload es el cuerpo JSON enviado a cada suscriptor. El timestamp se
// genera una sola vez por disparo y se comparte entre todos los destinos.
type WebhookPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"` // ISO-8601 UTC
	Data      any    `json:"data"`
}

// TriggerResult resultado de una entrega a un suscriptor.
type TriggerResult struct {
	IntegrationID string `json:"integration_id"`
	Success       bool   `json:"success"`
	Status        int    `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
	DurationMS    int64  `json:"duration_ms,omitempty"`
}

// Dispatcher entrega notificaciones de eventos de dominio a los webhooks
// suscritos: fan-out paralelo best-effort, un intento por disparo y por
// suscriptor, con log de entregas y contadores. No reintenta; los fallos
// quedan visibles en el log y en last_error para herramientas externas.
type Dispatcher struct {
	finder  IntegrationFinder
	log     DeliveryLog
	client  Doer
	crypto  Decrypter
	logger  *logger.Logger
	timeout time.Duration
}

// NewDispatcher construye el despachador. timeout <= 0 usa DefaultTimeout.
func NewDispatcher(finder IntegrationFinder, deliveryLog DeliveryLog, client Doer, crypto Decrypter, lg *logger.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		finder:  finder,
		log:     deliveryLog,
		client:  client,
		crypto:  crypto,
		logger:  lg,
		timeout: timeout,
	}
}

// TriggerWebhooks busca las integraciones habilitadas suscritas al evento y
// entrega el payload a todas en paralelo. Cada entrega resuelve a éxito o
// fallo de forma independiente (settle-all): el fallo de una jamás bloquea ni
// retrasa a las demás. Sin suscriptores devuelve un resultado vacío; no es error.
func (d *Dispatcher) TriggerWebhooks(ctx context.Context, orgID, eventType string, data any) ([]TriggerResult, error) {
	integrations, err := d.finder.FindSubscribed(orgID, eventType)
	if err != nil {
		return nil, fmt.Errorf("buscar suscripciones: %w", err)
	}
	if len(integrations) == 0 {
		return []TriggerResult{}, nil
	}

	// Timestamp único para todo el fan-out.
	payload := WebhookPayload{
		Event:     eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload: %w", err)
	}

	results := make([]TriggerResult, len(integrations))
	var wg sync.WaitGroup
	for i, integ := range integrations {
		wg.Add(1)
		go func(i int, integ *entity.Integration) {
			defer wg.Done()
			results[i] = d.deliver(ctx, integ, payload, body)
		}(i, integ)
	}
	wg.Wait()
	return results, nil
}

// deliver ejecuta un intento de entrega: headers de contrato + personalizados,
// inyección de auth según esquema, POST con timeout duro y registro del
// intento. Todo fallo (transporte, timeout, no-2xx) se captura en el
// resultado; nunca se propaga como error.
func (d *Dispatcher) deliver(ctx context.Context, integ *entity.Integration, payload WebhookPayload, body []byte) TriggerResult {
	now := time.Now()
	result := TriggerResult{IntegrationID: integ.ID}
	record := &entity.WebhookDelivery{
		ID:            uuid.New().String(),
		OrgID:         integ.OrgID,
		IntegrationID: integ.ID,
		EventType:     payload.Event,
		RequestBody:   string(body),
		CreatedAt:     now,
	}

	fail := func(errMsg string) TriggerResult {
		result.Success = false
		result.Error = errMsg
		record.Status = entity.DeliveryStatusFailed
		record.ErrorMessage = errMsg
		d.log.LogDelivery(record)
		d.log.RecordResult(integ.ID, integ.OrgID, false, errMsg, now)
		return result
	}

	if integ.Config.URL == "" {
		return fail(domain.ErrMissingEndpoint.Error())
	}
	record.RequestURL = integ.Config.URL

	scheme, err := DecodeAuthScheme(integ.Config, d.crypto)
	if err != nil {
		return fail("esquema de autenticación no soportado: " + integ.Config.AuthType)
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, integ.Config.URL, bytes.NewReader(body))
	if err != nil {
		return fail("construir petición: " + err.Error())
	}

	// Primero los headers personalizados, después los de contrato: la config
	// no puede pisar source, evento ni timestamp.
	for k, v := range integ.Config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSource, sourceMarker)
	req.Header.Set(HeaderEvent, payload.Event)
	req.Header.Set(HeaderTimestamp, payload.Timestamp)
	scheme.Apply(req.Header)

	record.RequestHeaders = redactedHeaders(req.Header, integ.Config)

	start := time.Now()
	resp, err := d.client.Do(req)
	duration := time.Since(start).Milliseconds()
	result.DurationMS = duration
	record.DurationMS = duration

	if err != nil {
		d.logger.Warn().
			Str("integration_id", integ.ID).
			Str("event", payload.Event).
			Err(err).
			Msg("entrega de webhook fallida")
		return fail("error de transporte: " + err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	record.ResponseStatus = resp.StatusCode
	record.ResponseBody = string(respBody)
	result.Status = resp.StatusCode

	// Éxito estricto: solo 2xx.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(fmt.Sprintf("respuesta HTTP %d", resp.StatusCode))
	}

	result.Success = true
	record.Status = entity.DeliveryStatusSuccess
	d.log.LogDelivery(record)
	d.log.RecordResult(integ.ID, integ.OrgID, true, "", now)
	d.logger.Debug().
		Str("integration_id", integ.ID).
		Str("event", payload.Event).
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration).
		Msg("webhook entregado")
	return result
}

// redactedHeaders copia los headers para el log, enmascarando los que llevan
// credenciales (Authorization y el header de api_key).
func redactedHeaders(h http.Header, cfg entity.IntegrationConfig) map[string]string {
	sensitive := map[string]struct{}{"Authorization": {}}
	if cfg.AuthType == entity.AuthTypeAPIKey {
		name := cfg.HeaderName
		if name == "" {
			name = DefaultAPIKeyHeader
		}
		sensitive[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	out := make(map[string]string, len(h))
	for k := range h {
		if _, ok := sensitive[k]; ok {
			out[k] = redactedMark
			continue
		}
		out[k] = h.Get(k)
	}
	return out
}
