package handler

import (
	"saas-commerce/internal/middleware"
	"saas-commerce/internal/model"
	"saas-commerce/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Sales     *SaleHandler
	Purchases *PurchaseHandler
	Artifacts *ArtifactHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the tenant API. Every route requires a token whose role
// may operate the tenant.
func RegisterRoutes(api fiber.Router, tokens *jwt.Manager, h Handlers) {
	protected := api.Group("", middleware.RequireAuth(tokens), middleware.RequireRole(model.OperatorRoles...))

	// Dashboard Routes
	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Sale Routes
	protected.Post("/sales", h.Sales.Checkout)
	protected.Get("/sales", h.Sales.GetSales)
	protected.Get("/sales/:id", h.Sales.GetSale)
	protected.Post("/sales/:id/approve", h.Sales.Approve)
	protected.Post("/sales/:id/reject", h.Sales.Reject)
	protected.Post("/sales/:id/cancel", h.Sales.Cancel)
	protected.Post("/sales/:id/deliver", h.Sales.Deliver)
	protected.Post("/sales/:id/invoice", h.Sales.IssueInvoice)
	protected.Post("/sales/:id/proof", h.Sales.AttachProof)
	protected.Get("/sales/:id/document", h.Sales.GetDocument)

	// Purchase Routes
	protected.Post("/purchases", h.Purchases.CreatePurchase)
	protected.Get("/purchases", h.Purchases.GetPurchases)
	protected.Get("/purchases/:id", h.Purchases.GetPurchase)
	protected.Get("/purchases/:id/document", h.Purchases.GetDocument)

	// Artifact Routes
	protected.Post("/artifacts", h.Artifacts.Upload)
	protected.Get("/artifacts/:ref", h.Artifacts.Download)
}
