package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/integrations"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// IntegrationHandler maneja las integraciones de webhooks salientes y su
// registro de entregas (protegido, solo admin/manager).
type IntegrationHandler struct {
	uc *integrations.IntegrationUseCase
}

// NewIntegrationHandler construye el handler.
func NewIntegrationHandler(uc *integrations.IntegrationUseCase) *IntegrationHandler {
	return &IntegrationHandler{uc: uc}
}

// integrationResponse nunca expone AuthPayload, ni siquiera cifrado.
func integrationResponse(i *entity.Integration) dto.IntegrationResponse {
	return dto.IntegrationResponse{
		ID:              i.ID,
		Name:            i.Name,
		Type:            i.Type,
		IsEnabled:       i.IsEnabled,
		Events:          i.Events,
		URL:             i.Config.URL,
		AuthType:        i.Config.AuthType,
		SuccessCount:    i.SuccessCount,
		FailureCount:    i.FailureCount,
		LastTriggeredAt: i.LastTriggeredAt,
		LastError:       i.LastError,
	}
}

func deliveryResponse(d *entity.WebhookDelivery) dto.WebhookDeliveryResponse {
	return dto.WebhookDeliveryResponse{
		ID:             d.ID,
		EventType:      d.EventType,
		RequestURL:     d.RequestURL,
		ResponseStatus: d.ResponseStatus,
		DurationMS:     d.DurationMS,
		Status:         d.Status,
		ErrorMessage:   d.ErrorMessage,
		CreatedAt:      d.CreatedAt,
	}
}

// Create da de alta una integración de webhook saliente.
// POST /api/integrations
func (h *IntegrationHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateIntegrationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	integration, err := h.uc.Create(c.Context(), orgID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name, url, auth_type válido y al menos un evento soportado son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(integrationResponse(integration))
}

// List lista las integraciones de la organización.
// GET /api/integrations
func (h *IntegrationHandler) List(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), orgID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.IntegrationResponse, 0, len(list))
	for _, i := range list {
		out = append(out, integrationResponse(i))
	}
	return c.JSON(out)
}

// Update edita parcialmente una integración (nombre, eventos, habilitación, conexión).
// PUT /api/integrations/:id
func (h *IntegrationHandler) Update(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateIntegrationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	integration, err := h.uc.Update(c.Context(), c.Params("id"), orgID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "integración no encontrada"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(integrationResponse(integration))
}

// ListDeliveries devuelve el registro append-only de entregas de una integración.
// GET /api/integrations/:id/deliveries
func (h *IntegrationHandler) ListDeliveries(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	deliveries, err := h.uc.ListDeliveries(c.Context(), c.Params("id"), orgID, page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "integración no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.WebhookDeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, deliveryResponse(d))
	}
	return c.JSON(out)
}

// SupportedEvents lista los identificadores de evento a los que se puede suscribir.
// GET /api/integrations/events
func (h *IntegrationHandler) SupportedEvents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"events": h.uc.SupportedEvents()})
}
