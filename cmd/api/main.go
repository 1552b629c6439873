package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-whatsapp-commerce/internal/config"
	"go-whatsapp-commerce/internal/handler"
	"go-whatsapp-commerce/internal/imaging"
	"go-whatsapp-commerce/internal/middleware"
	"go-whatsapp-commerce/internal/model"
	"go-whatsapp-commerce/internal/repository"
	"go-whatsapp-commerce/internal/service"
	"go-whatsapp-commerce/internal/whatsapp"
	"go-whatsapp-commerce/internal/ws"
	"go-whatsapp-commerce/pkg/database"
	"go-whatsapp-commerce/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env (.env is optional outside local development)
	_ = godotenv.Load()

	zapLog := logger.New()
	defer zapLog.Sync()
	log := zapLog.Sugar()

	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.Business{}, &model.BusinessSettings{},
		&model.Product{}, &model.Category{},
		&model.MediaRecord{},
		&model.Order{}, &model.OrderItem{},
		&model.InventorySnapshot{},
		&model.NotificationRecord{},
		&model.AnalyticsEvent{},
	); err != nil {
		log.Fatalw("auto-migration failed", "error", err)
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zapLog)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	businessRepo := repository.NewBusinessRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	mediaRepo := repository.NewMediaRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	analyticsRepo := repository.NewAnalyticsRepo(db)

	waClient := whatsapp.NewGraphClient(cfg, zapLog)
	optimizer := imaging.NewOptimizer(cfg)

	gate := service.NewAccessGate(businessRepo, cfg.EncryptionKey)
	mediaService := service.NewMediaService(cfg, gate, optimizer, waClient,
		mediaRepo, productRepo, categoryRepo, orderRepo, analyticsRepo, log)
	catalogService := service.NewCatalogService(cfg, gate, mediaService,
		productRepo, inventoryRepo, mediaRepo, analyticsRepo, waClient, wsHub, log)
	notificationService := service.NewNotificationService(gate, orderRepo,
		notificationRepo, businessRepo, analyticsRepo, waClient, wsHub, log)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	webhookHandler := handler.NewWebhookHandler(notificationService, cfg.WebhookVerifyToken, log)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "WhatsApp Commerce Sync v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Business Platform callbacks (verify handshake + delivery statuses)
	api.Get("/webhook", webhookHandler.Verify)
	api.Post("/webhook", webhookHandler.Receive)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(cfg.JWTSecret))

	catalog := protected.Group("/catalog")
	catalog.Post("/sync", catalogHandler.SyncCatalog)
	catalog.Post("/product/update", catalogHandler.UpdateProduct)
	catalog.Post("/product/delete", catalogHandler.DeleteProduct)
	catalog.Post("/inventory/sync", catalogHandler.SyncInventory)
	catalog.Get("/status/:businessId", catalogHandler.GetSyncStatus)

	media := protected.Group("/media")
	media.Post("/upload", mediaHandler.UploadMedia)
	media.Post("/batch-upload", mediaHandler.BatchUploadMedia)
	media.Post("/refresh", mediaHandler.RefreshExpiring)
	media.Post("/cleanup", mediaHandler.CleanupUnused)

	protected.Post("/notifications/send", notificationHandler.SendOrderNotification)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
	log.Infow("server exited")
}
