package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router. Hub es opcional (sin hub no se expone /ws/stock).
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CategoryUC  *usecase.CategoryUseCase
	SupplierUC  *usecase.SupplierUseCase
	ItemUC      *usecase.ItemUseCase
	LowStockUC  *inventory.LowStockUseCase
	LedgerUC    *ledger.LedgerUseCase
	DashboardUC *analytics.DashboardUseCase
	Gate        ports.Gate
	Hub         *ws.Hub
	Tokens      *jwt.Signer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))
	protected.Post("/logout", authHandler.Logout)
	protected.Get("/user", authHandler.Me)

	can := func(action, resource string) fiber.Handler {
		return RequirePermission(deps.Gate, action, resource)
	}

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", can(authz.ActionView, authz.ResourceCategory), categoryHandler.List)
	categories.Post("/", can(authz.ActionCreate, authz.ResourceCategory), categoryHandler.Create)
	categories.Get("/:id", can(authz.ActionView, authz.ResourceCategory), categoryHandler.GetByID)
	categories.Put("/:id", can(authz.ActionUpdate, authz.ResourceCategory), categoryHandler.Update)
	categories.Patch("/:id", can(authz.ActionUpdate, authz.ResourceCategory), categoryHandler.Update)
	categories.Delete("/:id", can(authz.ActionDelete, authz.ResourceCategory), categoryHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", can(authz.ActionView, authz.ResourceSupplier), supplierHandler.List)
	suppliers.Post("/", can(authz.ActionCreate, authz.ResourceSupplier), supplierHandler.Create)
	suppliers.Get("/:id", can(authz.ActionView, authz.ResourceSupplier), supplierHandler.GetByID)
	suppliers.Put("/:id", can(authz.ActionUpdate, authz.ResourceSupplier), supplierHandler.Update)
	suppliers.Patch("/:id", can(authz.ActionUpdate, authz.ResourceSupplier), supplierHandler.Update)
	suppliers.Delete("/:id", can(authz.ActionDelete, authz.ResourceSupplier), supplierHandler.Delete)

	// Items (low-stock antes de /:id)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.LowStockUC)
	items.Get("/low-stock", can(authz.ActionView, authz.ResourceItem), itemHandler.LowStock)
	items.Get("/", can(authz.ActionView, authz.ResourceItem), itemHandler.List)
	items.Post("/", can(authz.ActionCreate, authz.ResourceItem), itemHandler.Create)
	items.Get("/:id", can(authz.ActionView, authz.ResourceItem), itemHandler.GetByID)
	items.Put("/:id", can(authz.ActionUpdate, authz.ResourceItem), itemHandler.Update)
	items.Patch("/:id", can(authz.ActionUpdate, authz.ResourceItem), itemHandler.Update)
	items.Delete("/:id", can(authz.ActionDelete, authz.ResourceItem), itemHandler.Delete)

	// Transactions (latest antes de /:id)
	transactions := protected.Group("/transactions")
	txHandler := NewTransactionHandler(deps.LedgerUC)
	transactions.Get("/latest", can(authz.ActionView, authz.ResourceTransaction), txHandler.Latest)
	transactions.Get("/", can(authz.ActionView, authz.ResourceTransaction), txHandler.List)
	transactions.Post("/", can(authz.ActionCreate, authz.ResourceTransaction), txHandler.Create)
	transactions.Get("/:id", can(authz.ActionView, authz.ResourceTransaction), txHandler.GetByID)
	transactions.Get("/:id/pdf", can(authz.ActionView, authz.ResourceTransaction), txHandler.Slip)
	transactions.Put("/:id", can(authz.ActionUpdate, authz.ResourceTransaction), txHandler.Update)
	transactions.Patch("/:id", can(authz.ActionUpdate, authz.ResourceTransaction), txHandler.Update)
	transactions.Delete("/:id", can(authz.ActionDelete, authz.ResourceTransaction), txHandler.Delete)

	// Dashboard
	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/stats", can(authz.ActionView, authz.ResourceItem), dashboardHandler.Stats)
	dashboard.Get("/movement", can(authz.ActionView, authz.ResourceTransaction), dashboardHandler.Movement)

	// WebSocket de stock en tiempo real
	if deps.Hub != nil {
		app.Get("/ws/stock", wsUpgrade(deps.Tokens, deps.Gate), stockFeed(deps.Hub))
	}
}
