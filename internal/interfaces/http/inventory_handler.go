package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/inventory"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InventoryHandler maneja el catálogo de artículos, los ajustes manuales de
// stock y la consulta del historial de movimientos (protegido).
type InventoryHandler struct {
	itemUC   *inventory.ItemUseCase
	ledgerUC *ledger.StockLedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(itemUC *inventory.ItemUseCase, ledgerUC *ledger.StockLedgerUseCase) *InventoryHandler {
	return &InventoryHandler{itemUC: itemUC, ledgerUC: ledgerUC}
}

func itemResponse(item *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		SKU:          item.SKU,
		StockLevel:   item.StockLevel,
		ReorderLevel: item.ReorderLevel,
		Unit:         item.Unit,
		UnitPrice:    item.UnitPrice,
		IsActive:     item.IsActive,
	}
}

func movementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		PreviousLevel:   m.PreviousLevel,
		NewLevel:        m.NewLevel,
		UnitPrice:       m.UnitPrice,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		CreatedByID:     m.CreatedByID,
		CreatedByType:   m.CreatedByType,
		Reason:          m.Reason,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

// CreateItem da de alta un artículo de inventario.
// POST /api/inventory/items
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInventoryItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.itemUC.CreateItem(c.Context(), orgID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name y sku son requeridos; niveles y precio no pueden ser negativos"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SKU_EXISTS", Message: "el sku ya existe en esta organización"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(itemResponse(item))
}

// ListItems lista el catálogo de la organización.
// GET /api/inventory/items
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	items, err := h.itemUC.ListItems(c.Context(), orgID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.InventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse(it))
	}
	return c.JSON(out)
}

// GetItem obtiene un artículo por ID.
// GET /api/inventory/items/:id
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	item, err := h.itemUC.GetItem(c.Context(), c.Params("id"), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(itemResponse(item))
}

// DeactivateItem descontinúa un artículo (soft-delete); conserva el historial.
// DELETE /api/inventory/items/:id
func (h *InventoryHandler) DeactivateItem(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	item, err := h.itemUC.DeactivateItem(c.Context(), c.Params("id"), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(itemResponse(item))
}

// AdjustStock aplica un ajuste manual de stock vía el ledger: quantity con
// signo, type RESTOCK|DAMAGE|CORRECTION. Nunca deja el nivel en negativo.
// POST /api/inventory/adjustments
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	userID := GetUserID(c)
	if orgID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := ledger.Actor{ID: userID, Type: entity.ActorTypeUser}
	result, err := h.ledgerUC.AdjustStock(c.Context(), in.InventoryItemID, orgID, in.Quantity, in.Type, actor, in.Reason)
	if err != nil {
		var invalidAdj *domain.InvalidAdjustmentError
		if errors.As(err, &invalidAdj) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "INVALID_ADJUSTMENT",
				Message: "el ajuste dejaría el stock en negativo",
				Details: fiber.Map{"current_level": invalidAdj.CurrentLevel, "quantity": invalidAdj.Quantity},
			})
		}
		if errors.Is(err, domain.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		if errors.Is(err, domain.ErrItemInactive) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ITEM_INACTIVE", Message: "el artículo está descontinuado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "inventory_item_id, quantity distinto de cero y type RESTOCK|DAMAGE|CORRECTION son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.AdjustStockResponse{
		Success:       true,
		PreviousLevel: result.PreviousLevel,
		NewLevel:      result.NewLevel,
	})
}

// ListMovements devuelve el historial de movimientos de un artículo,
// opcionalmente acotado con from/to (RFC3339).
// GET /api/inventory/items/:id/movements
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	orgID := GetOrgID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}
	movements, err := h.itemUC.ListMovements(c.Context(), c.Params("id"), orgID, from, to, page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementResponse(m))
	}
	return c.JSON(out)
}
