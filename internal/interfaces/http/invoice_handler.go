package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

func invoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerName: inv.CustomerName,
		Status:       inv.Status,
		Subtotal:     inv.Subtotal,
		TaxTotal:     inv.TaxTotal,
		GrandTotal:   inv.GrandTotal,
		IssuedAt:     inv.IssuedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:              it.ID,
			InventoryItemID: it.InventoryItemID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TaxRate:         it.TaxRate,
			Subtotal:        it.Subtotal,
		})
	}
	return resp
}

func shortfallDetails(e *domain.InsufficientStockError) []fiber.Map {
	out := make([]fiber.Map, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		out = append(out, fiber.Map{
			"inventory_item_id": s.ItemID,
			"available":         s.Available,
			"requested":         s.Requested,
		})
	}
	return out
}

// Create emite una factura y descuenta inventario en la misma transacción.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	userID := GetUserID(c)
	if orgID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.CreateInvoice(c.Context(), orgID, userID, in)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "INSUFFICIENT_STOCK",
				Message: "stock insuficiente; la factura no fue creada",
				Details: shortfallDetails(insufficient),
			})
		}
		var notFound *domain.ItemNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "ITEM_NOT_FOUND",
				Message: "artículos no encontrados",
				Details: notFound.ItemIDs,
			})
		}
		var inactive *domain.ItemInactiveError
		if errors.As(err, &inactive) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "ITEM_INACTIVE",
				Message: "artículos descontinuados",
				Details: inactive.ItemIDs,
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer_name y al menos una línea con cantidad positiva son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(invoiceResponse(invoice, nil))
}

// GetByID obtiene el detalle completo de una factura.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, items, err := h.uc.GetInvoice(c.Context(), id, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoiceResponse(invoice, items))
}

// Update edita los datos de cabecera de una factura no anulada.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.UpdateInvoice(c.Context(), c.Params("id"), orgID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: "una factura anulada no se puede editar"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NUMBER_EXISTS", Message: "ya existe una factura con ese número"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nada que actualizar"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoiceResponse(invoice, nil))
}

// Cancel anula una factura y restaura el inventario deducido.
// POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	userID := GetUserID(c)
	if orgID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoice, err := h.uc.CancelInvoice(c.Context(), c.Params("id"), orgID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: "la factura ya está anulada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoiceResponse(invoice, nil))
}

// Pay marca una factura como pagada.
// POST /api/invoices/:id/pay
func (h *InvoiceHandler) Pay(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoice, err := h.uc.PayInvoice(c.Context(), c.Params("id"), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "solo facturas emitidas pueden marcarse como pagadas"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoiceResponse(invoice, nil))
}
