package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saas-commerce/internal/artifact"
	"saas-commerce/internal/config"
	"saas-commerce/internal/handler"
	"saas-commerce/internal/ledger"
	"saas-commerce/internal/middleware"
	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"
	"saas-commerce/internal/repository/memory"
	"saas-commerce/internal/service"
	"saas-commerce/internal/ws"
	"saas-commerce/pkg/database"
	"saas-commerce/pkg/jwt"
	"saas-commerce/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Storage
	store, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("open storage", zap.Error(err))
	}
	artifacts, err := artifact.NewFileStore(cfg.ArtifactDir, cfg.ArtifactMaxBytes)
	if err != nil {
		zlog.Fatal("open artifact store", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	opts := []service.Option{
		service.WithLogger(zlog),
		service.WithMaxRetries(cfg.LedgerMaxRetries),
		service.WithArtifacts(artifacts),
		service.WithEvents(service.MultiPublisher{
			service.LogPublisher{Log: zlog.Named("events")},
			wsHub,
		}),
	}
	l := ledger.New()
	saleService := service.NewSaleService(store, l, opts...)
	purchaseService := service.NewPurchaseService(store, l, opts...)
	documentService := service.NewDocumentService(store, opts...)
	dashService := service.NewDashboardService(store.Dashboard(), opts...)
	tokens := jwt.NewManager(cfg.JWTSecret, 24*time.Hour)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "SaaS Commerce v1.0",
		BodyLimit: int(cfg.ArtifactMaxBytes) + 1<<20,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 6. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "storage": cfg.Storage})
	})
	handler.RegisterRoutes(app.Group("/api/v1"), tokens, handler.Handlers{
		Sales:     handler.NewSaleHandler(saleService, documentService),
		Purchases: handler.NewPurchaseHandler(purchaseService, documentService),
		Artifacts: handler.NewArtifactHandler(artifacts),
		Dashboard: handler.NewDashboardHandler(dashService),
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireAuth(tokens), middleware.RequireRole(model.OperatorRoles...))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		tenantID, _ := c.Locals(middleware.LocalTenantID).(uuid.UUID)
		if !wsHub.Join(ws.Client{Conn: c, TenantID: tenantID}) {
			return
		}
		defer wsHub.Leave(c)

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
			zlog.Panic("listen", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	stop()
	zlog.Info("server exited")
}

func openStore(cfg *config.Config, zlog *zap.Logger) (repository.Store, error) {
	if cfg.Storage == config.StorageMemory {
		zlog.Warn("using in-memory storage, data is lost on restart")
		return memory.New(cfg.FiscalSeries), nil
	}

	db, err := database.ConnectDB(cfg.DatabaseURL, zlog, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, repository.Models()...); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db, cfg.FiscalSeries), nil
}
