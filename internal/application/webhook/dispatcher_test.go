package webhook_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/webhook"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOrgID = "org-1"
	testEvent = "invoice.created"
)

// stubFinder devuelve una lista fija de integraciones.
type stubFinder struct {
	integrations []*entity.Integration
	err          error
}

func (f *stubFinder) FindSubscribed(orgID, eventType string) ([]*entity.Integration, error) {
	return f.integrations, f.err
}

type resultCall struct {
	integrationID string
	success       bool
	lastError     string
}

// memDeliveryLog captura entregas y contadores en memoria.
type memDeliveryLog struct {
	mu         sync.Mutex
	deliveries []*entity.WebhookDelivery
	results    []resultCall
}

func (m *memDeliveryLog) LogDelivery(d *entity.WebhookDelivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
}

func (m *memDeliveryLog) RecordResult(integrationID, orgID string, success bool, lastError string, triggeredAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, resultCall{integrationID: integrationID, success: success, lastError: lastError})
}

func (m *memDeliveryLog) deliveryFor(integrationID string) *entity.WebhookDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deliveries {
		if d.IntegrationID == integrationID {
			return d
		}
	}
	return nil
}

func (m *memDeliveryLog) resultFor(integrationID string) (resultCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.integrationID == integrationID {
			return r, true
		}
	}
	return resultCall{}, false
}

// plainDecrypter pasa las credenciales tal cual (tests sin cifrado real).
type plainDecrypter struct{}

func (plainDecrypter) SafeDecrypt(value string) string { return value }

func newIntegration(id, url, authType, authPayload string) *entity.Integration {
	return &entity.Integration{
		ID:        id,
		OrgID:     testOrgID,
		Name:      "integración " + id,
		Type:      entity.IntegrationTypeOutgoingWebhook,
		IsEnabled: true,
		Events:    []string{testEvent},
		Config: entity.IntegrationConfig{
			URL:         url,
			AuthType:    authType,
			AuthPayload: authPayload,
		},
	}
}

func newDispatcher(finder *stubFinder, log *memDeliveryLog, timeout time.Duration) *webhook.Dispatcher {
	return webhook.NewDispatcher(finder, log, &http.Client{}, plainDecrypter{}, logger.Nop(), timeout)
}

func resultByID(results []webhook.TriggerResult, id string) webhook.TriggerResult {
	for _, r := range results {
		if r.IntegrationID == id {
			return r
		}
	}
	return webhook.TriggerResult{}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fan-out: independencia entre entregas (settle-all)
// ──────────────────────────────────────────────────────────────────────────────

// Un suscriptor lento (excede el timeout) y uno sano: el sano debe recibir su
// entrega y registrarse como éxito; el lento como fallo. Ambos quedan en el log.
func TestTriggerWebhooks_FalloDeUnoNoBloqueaAlOtro(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer slow.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-lenta", slow.URL, entity.AuthTypeNone, ""),
		newIntegration("int-sana", healthy.URL, entity.AuthTypeNone, ""),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, 100*time.Millisecond)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, map[string]any{"id": "inv-1"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	slowRes := resultByID(results, "int-lenta")
	healthyRes := resultByID(results, "int-sana")
	assert.False(t, slowRes.Success, "la entrega lenta debe fallar por timeout")
	assert.NotEmpty(t, slowRes.Error)
	assert.True(t, healthyRes.Success, "la entrega sana debe completarse pese al fallo de la otra")
	assert.Equal(t, http.StatusOK, healthyRes.Status)

	// Ambos intentos quedan en el registro de entregas.
	require.NotNil(t, log.deliveryFor("int-lenta"))
	require.NotNil(t, log.deliveryFor("int-sana"))
	assert.Equal(t, entity.DeliveryStatusFailed, log.deliveryFor("int-lenta").Status)
	assert.Equal(t, entity.DeliveryStatusSuccess, log.deliveryFor("int-sana").Status)

	// Y los contadores reflejan cada resultado.
	slowCall, ok := log.resultFor("int-lenta")
	require.True(t, ok)
	assert.False(t, slowCall.success)
	assert.NotEmpty(t, slowCall.lastError)
	healthyCall, ok := log.resultFor("int-sana")
	require.True(t, ok)
	assert.True(t, healthyCall.success)
	assert.Empty(t, healthyCall.lastError)
}

// Sin suscriptores: resultado vacío, ninguna petición y ningún registro.
func TestTriggerWebhooks_SinSuscriptoresEsNoOp(t *testing.T) {
	finder := &stubFinder{}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, log.deliveries, "sin suscriptores no debe haber registros de entrega")
	assert.Empty(t, log.results)
}

// Solo 2xx cuenta como éxito: un 404 es fallo aunque el transporte funcione.
func TestTriggerWebhooks_No2xxEsFallo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-404", srv.URL, entity.AuthTypeNone, ""),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, http.StatusNotFound, results[0].Status)
	assert.Contains(t, results[0].Error, "404")

	record := log.deliveryFor("int-404")
	require.NotNil(t, record)
	assert.Equal(t, entity.DeliveryStatusFailed, record.Status)
	assert.Equal(t, http.StatusNotFound, record.ResponseStatus)
}

// Integración sin URL: falla sin intentar red y queda registrada.
func TestTriggerWebhooks_SinURLFallaSinRed(t *testing.T) {
	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-sin-url", "", entity.AuthTypeNone, ""),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	record := log.deliveryFor("int-sin-url")
	require.NotNil(t, record)
	assert.Equal(t, entity.DeliveryStatusFailed, record.Status)
	assert.Empty(t, record.RequestURL)
}

// ──────────────────────────────────────────────────────────────────────────────
// Payload y headers de contrato
// ──────────────────────────────────────────────────────────────────────────────

func TestTriggerWebhooks_PayloadYHeadersDeContrato(t *testing.T) {
	var (
		mu      sync.Mutex
		headers http.Header
		body    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	integ := newIntegration("int-1", srv.URL, entity.AuthTypeNone, "")
	// La config intenta pisar un header de contrato: no debe poder.
	integ.Config.Headers = map[string]string{
		"X-Custom-Header":  "valor-propio",
		"X-Webhook-Source": "impostor",
	}
	finder := &stubFinder{integrations: []*entity.Integration{integ}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, map[string]any{"id": "inv-9"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Success)
	assert.Equal(t, http.StatusNoContent, results[0].Status, "204 también es éxito")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "crm-core", headers.Get(webhook.HeaderSource), "la config no puede pisar el header de origen")
	assert.Equal(t, testEvent, headers.Get(webhook.HeaderEvent))
	assert.Equal(t, "valor-propio", headers.Get("X-Custom-Header"), "los headers personalizados sí se envían")

	ts, err := time.Parse(time.RFC3339, headers.Get(webhook.HeaderTimestamp))
	require.NoError(t, err, "el timestamp de contrato debe ser RFC3339")
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	var payload webhook.WebhookPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, testEvent, payload.Event)
	assert.Equal(t, headers.Get(webhook.HeaderTimestamp), payload.Timestamp, "el timestamp del cuerpo y del header deben coincidir")
	data, ok := payload.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "inv-9", data["id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Inyección de autenticación por esquema
// ──────────────────────────────────────────────────────────────────────────────

func captureAuthServer(t *testing.T, header string) (*httptest.Server, func() string) {
	t.Helper()
	var (
		mu  sync.Mutex
		got string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Get(header)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	return srv, func() string {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
}

func TestTriggerWebhooks_AuthBearer(t *testing.T) {
	srv, captured := captureAuthServer(t, "Authorization")
	defer srv.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-bearer", srv.URL, entity.AuthTypeBearer, "token-abc"),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.Equal(t, "Bearer token-abc", captured())
}

func TestTriggerWebhooks_AuthBasic(t *testing.T) {
	srv, captured := captureAuthServer(t, "Authorization")
	defer srv.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-basic", srv.URL, entity.AuthTypeBasic, "usuario:clave"),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("usuario:clave"))
	assert.Equal(t, expected, captured())
}

func TestTriggerWebhooks_AuthAPIKeyConHeaderPersonalizado(t *testing.T) {
	srv, captured := captureAuthServer(t, "X-Portal-Key")
	defer srv.Close()

	integ := newIntegration("int-apikey", srv.URL, entity.AuthTypeAPIKey, "clave-secreta")
	integ.Config.HeaderName = "X-Portal-Key"
	finder := &stubFinder{integrations: []*entity.Integration{integ}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.Equal(t, "clave-secreta", captured())
}

func TestTriggerWebhooks_AuthAPIKeyHeaderPorDefecto(t *testing.T) {
	srv, captured := captureAuthServer(t, webhook.DefaultAPIKeyHeader)
	defer srv.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-apikey-def", srv.URL, entity.AuthTypeAPIKey, "clave-def"),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.Equal(t, "clave-def", captured())
}

// Esquema desconocido: la entrega falla de forma contenida, sin petición.
func TestTriggerWebhooks_AuthDesconocidaFalla(t *testing.T) {
	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-rara", "http://127.0.0.1:1/hook", "oauth2", "x"),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	results, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "oauth2")
}

// ──────────────────────────────────────────────────────────────────────────────
// Higiene de credenciales en el registro de entregas
// ──────────────────────────────────────────────────────────────────────────────

func TestTriggerWebhooks_CredencialesEnmascaradasEnElLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	finder := &stubFinder{integrations: []*entity.Integration{
		newIntegration("int-secreta", srv.URL, entity.AuthTypeBearer, "token-super-secreto"),
	}}
	log := &memDeliveryLog{}
	d := newDispatcher(finder, log, time.Second)

	_, err := d.TriggerWebhooks(context.Background(), testOrgID, testEvent, nil)
	require.NoError(t, err)

	record := log.deliveryFor("int-secreta")
	require.NotNil(t, record)
	assert.Equal(t, "[REDACTED]", record.RequestHeaders["Authorization"],
		"el token jamás debe quedar en claro en el registro")
	for _, v := range record.RequestHeaders {
		assert.NotContains(t, v, "token-super-secreto")
	}
}
