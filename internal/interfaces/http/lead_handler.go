package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// LeadHandler maneja el pipeline comercial de leads (protegido).
type LeadHandler struct {
	uc *crm.LeadUseCase
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *crm.LeadUseCase) *LeadHandler {
	return &LeadHandler{uc: uc}
}

func leadResponse(l *entity.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:          l.ID,
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		Company:     l.Company,
		Source:      l.Source,
		Status:      l.Status,
		OwnerID:     l.OwnerID,
		ConvertedAt: l.ConvertedAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// Create da de alta un lead.
// POST /api/leads
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	userID := GetUserID(c)
	if orgID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lead, err := h.uc.CreateLead(c.Context(), orgID, userID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(leadResponse(lead))
}

// List lista los leads de la organización.
// GET /api/leads
func (h *LeadHandler) List(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	leads, err := h.uc.ListLeads(c.Context(), orgID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, leadResponse(l))
	}
	return c.JSON(out)
}

// Update edita parcialmente un lead (incluye transición de estado).
// PUT /api/leads/:id
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lead, err := h.uc.UpdateLead(c.Context(), c.Params("id"), orgID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lead no encontrado"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CONVERTED", Message: "un lead convertido no se puede editar"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(leadResponse(lead))
}

// Convert marca un lead como convertido.
// POST /api/leads/:id/convert
func (h *LeadHandler) Convert(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	lead, err := h.uc.ConvertLead(c.Context(), c.Params("id"), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lead no encontrado"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CONVERTED", Message: "el lead ya fue convertido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(leadResponse(lead))
}
