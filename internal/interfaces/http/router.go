package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/integrations"
	"github.com/jhoicas/crm-api/internal/application/inventory"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ItemUC        *inventory.ItemUseCase
	LedgerUC      *ledger.StockLedgerUseCase
	InvoiceUC     *billing.InvoiceUseCase
	LeadUC        *crm.LeadUseCase
	IntegrationUC *integrations.IntegrationUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario: catálogo, ajustes manuales y movimientos (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.ItemUC, deps.LedgerUC)
	invGroup.Get("/items", inventoryHandler.ListItems)
	invGroup.Get("/items/:id", inventoryHandler.GetItem)
	invGroup.Get("/items/:id/movements", inventoryHandler.ListMovements)
	invGroup.Post("/items", RequireRole(entity.RoleManager), inventoryHandler.CreateItem)
	invGroup.Delete("/items/:id", RequireRole(entity.RoleManager), inventoryHandler.DeactivateItem)
	invGroup.Post("/adjustments", RequireRole(entity.RoleManager), inventoryHandler.AdjustStock)

	// Facturas (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Post("/:id/pay", invoiceHandler.Pay)
	invoices.Post("/:id/cancel", RequireRole(entity.RoleManager), invoiceHandler.Cancel)

	// Leads (protegido)
	leads := protected.Group("/leads")
	leadHandler := NewLeadHandler(deps.LeadUC)
	leads.Post("/", leadHandler.Create)
	leads.Get("/", leadHandler.List)
	leads.Put("/:id", leadHandler.Update)
	leads.Post("/:id/convert", leadHandler.Convert)

	// Integraciones de webhooks salientes (protegido, admin/manager)
	integrationsGroup := protected.Group("/integrations", RequireRole(entity.RoleManager))
	integrationHandler := NewIntegrationHandler(deps.IntegrationUC)
	integrationsGroup.Get("/events", integrationHandler.SupportedEvents)
	integrationsGroup.Post("/", integrationHandler.Create)
	integrationsGroup.Get("/", integrationHandler.List)
	integrationsGroup.Put("/:id", integrationHandler.Update)
	integrationsGroup.Get("/:id/deliveries", integrationHandler.ListDeliveries)
}
