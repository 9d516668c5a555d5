package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/integrations"
	"github.com/jhoicas/crm-api/internal/application/inventory"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/application/webhook"
	"github.com/jhoicas/crm-api/internal/infrastructure/audit"
	"github.com/jhoicas/crm-api/internal/infrastructure/httpclient"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/crm-api/internal/interfaces/http"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/crypto"
	"github.com/jhoicas/crm-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewInventoryItemRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	integrationRepo := postgres.NewIntegrationRepository(pool)
	deliveryRepo := postgres.NewWebhookDeliveryRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	cipher, err := crypto.New(cfg.Crypto.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("clave de cifrado de credenciales")
	}

	// Despachador de webhooks: fan-out paralelo con auditoría best-effort.
	deliveryLog := audit.NewDeliveryLog(deliveryRepo, integrationRepo, log.Component("webhook"))
	webhookClient := httpclient.NewWebhookClient(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second)
	dispatcher := webhook.NewDispatcher(
		integrationRepo, deliveryLog, webhookClient, cipher,
		log.Component("webhook"),
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
	)
	notifier := webhook.NewNotifier(dispatcher)

	ledgerUC := ledger.NewStockLedgerUseCase(txRunner)
	itemUC := inventory.NewItemUseCase(itemRepo, movementRepo)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, ledgerUC, invoiceRepo, notifier)
	leadUC := crm.NewLeadUseCase(leadRepo, notifier)
	integrationUC := integrations.NewIntegrationUseCase(integrationRepo, deliveryRepo, cipher)
	authUC := auth.NewAuthUseCase(userRepo, orgRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ItemUC:        itemUC,
		LedgerUC:      ledgerUC,
		InvoiceUC:     invoiceUC,
		LeadUC:        leadUC,
		IntegrationUC: integrationUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
