package integrations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/webhook"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Encrypter cifra credenciales antes de guardarlas. Lo implementa pkg/crypto.
type Encrypter interface {
	Encrypt(plain string) (string, error)
}

// IntegrationUseCase administra las suscripciones de webhook saliente:
// alta, edición de eventos, habilitar/deshabilitar y consulta del log de
// entregas. El payload de autenticación se cifra en reposo.
type IntegrationUseCase struct {
	integrationRepo repository.IntegrationRepository
	deliveryRepo    repository.WebhookDeliveryRepository
	crypto          Encrypter
}

// NewIntegrationUseCase construye el caso de uso de integraciones.
func NewIntegrationUseCase(integrationRepo repository.IntegrationRepository, deliveryRepo repository.WebhookDeliveryRepository, crypto Encrypter) *IntegrationUseCase {
	return &IntegrationUseCase{
		integrationRepo: integrationRepo,
		deliveryRepo:    deliveryRepo,
		crypto:          crypto,
	}
}

func validAuthType(t string) bool {
	switch t {
	case "", entity.AuthTypeNone, entity.AuthTypeBearer, entity.AuthTypeAPIKey, entity.AuthTypeBasic:
		return true
	}
	return false
}

// Create registra una integración de webhook saliente con su config cifrada.
func (uc *IntegrationUseCase) Create(ctx context.Context, orgID string, in dto.CreateIntegrationRequest) (*entity.Integration, error) {
	if orgID == "" || in.Name == "" || in.Config.URL == "" || len(in.Events) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validAuthType(in.Config.AuthType) {
		return nil, domain.ErrInvalidInput
	}
	authPayload := in.Config.AuthPayload
	if authPayload != "" {
		enc, err := uc.crypto.Encrypt(authPayload)
		if err != nil {
			return nil, err
		}
		authPayload = enc
	}
	now := time.Now()
	integ := &entity.Integration{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Name:      in.Name,
		Type:      entity.IntegrationTypeOutgoingWebhook,
		IsEnabled: true,
		Events:    in.Events,
		Config: entity.IntegrationConfig{
			URL:         in.Config.URL,
			AuthType:    in.Config.AuthType,
			AuthPayload: authPayload,
			HeaderName:  in.Config.HeaderName,
			Headers:     in.Config.Headers,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.integrationRepo.Create(integ); err != nil {
		return nil, err
	}
	return integ, nil
}

// Update modifica eventos, URL, credenciales o el flag de habilitación.
func (uc *IntegrationUseCase) Update(ctx context.Context, id, orgID string, in dto.UpdateIntegrationRequest) (*entity.Integration, error) {
	integ, err := uc.integrationRepo.GetByID(id, orgID)
	if err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		integ.Name = in.Name
	}
	if in.Events != nil {
		if len(in.Events) == 0 {
			return nil, domain.ErrInvalidInput
		}
		integ.Events = in.Events
	}
	if in.IsEnabled != nil {
		integ.IsEnabled = *in.IsEnabled
	}
	if in.Config != nil {
		if !validAuthType(in.Config.AuthType) {
			return nil, domain.ErrInvalidInput
		}
		authPayload := in.Config.AuthPayload
		if authPayload != "" {
			enc, err := uc.crypto.Encrypt(authPayload)
			if err != nil {
				return nil, err
			}
			authPayload = enc
		}
		integ.Config = entity.IntegrationConfig{
			URL:         in.Config.URL,
			AuthType:    in.Config.AuthType,
			AuthPayload: authPayload,
			HeaderName:  in.Config.HeaderName,
			Headers:     in.Config.Headers,
		}
	}
	integ.UpdatedAt = time.Now()
	if err := uc.integrationRepo.Update(integ); err != nil {
		return nil, err
	}
	return integ, nil
}

// List lista las integraciones de la organización.
func (uc *IntegrationUseCase) List(ctx context.Context, orgID string, limit, offset int) ([]*entity.Integration, error) {
	return uc.integrationRepo.ListByOrg(orgID, limit, offset)
}

// ListDeliveries devuelve el log de entregas de una integración.
func (uc *IntegrationUseCase) ListDeliveries(ctx context.Context, id, orgID string, limit, offset int) ([]*entity.WebhookDelivery, error) {
	integ, err := uc.integrationRepo.GetByID(id, orgID)
	if err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, domain.ErrNotFound
	}
	return uc.deliveryRepo.ListByIntegration(id, orgID, limit, offset)
}

// SupportedEvents expone los eventos notificables para la UI de administración.
func (uc *IntegrationUseCase) SupportedEvents() []string {
	return []string{
		webhook.EventInvoiceCreated,
		webhook.EventInvoiceUpdated,
		webhook.EventInvoicePaid,
		webhook.EventInvoiceCancelled,
		webhook.EventLeadCreated,
		webhook.EventLeadUpdated,
		webhook.EventLeadConverted,
		webhook.EventLowStock,
	}
}
