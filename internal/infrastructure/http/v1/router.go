// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/infrastructure/http/v1/handlers"
	"hussiny/internal/infrastructure/http/v1/middleware"
	"hussiny/pkg/logger"
)

// Permission names guarding the route groups.
const (
	PermProducts  = "products"
	PermSales     = "sales"
	PermRepairs   = "repairs"
	PermTransfers = "transfers"
	PermReports   = "reports"
	PermBackups   = "backups"
	PermUsers     = "users"
	PermSettings  = "settings"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Catalog   *handlers.CatalogHandler
	Sales     *handlers.SalesHandler
	Repairs   *handlers.RepairsHandler
	Transfers *handlers.TransfersHandler
	Reports   *handlers.ReportsHandler
	Search    *handlers.SearchHandler
	Backup    *handlers.BackupHandler
	Users     *handlers.UsersHandler
	Settings  *handlers.SettingsHandler
	Audit     *handlers.AuditHandler
}

// NewRouter builds the gin engine with all middleware and routes.
func NewRouter(log *logger.Logger, tokens middleware.TokenParser, h Handlers, development bool) *gin.Engine {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Trace(),
		middleware.Logger(log),
		middleware.Recovery(),
		middleware.ErrorHandler(),
	)

	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", middleware.Auth(tokens))
	authed.GET("/auth/me", h.Auth.Me)
	authed.GET("/search", h.Search.Search)
	authed.GET("/dashboard", h.Reports.Dashboard)

	products := authed.Group("/products", middleware.RequirePermission(PermProducts))
	{
		products.POST("", h.Products.Create)
		products.GET("", h.Products.List)
		products.GET("/low-stock", h.Products.LowStock)
		products.GET("/barcode/:barcode", h.Products.GetByBarcode)
		products.GET("/sku/:sku", h.Products.GetBySKU)
		products.GET("/:id", h.Products.Get)
		products.PUT("/:id", h.Products.Update)
		products.DELETE("/:id", h.Products.Deactivate)
		products.POST("/:id/adjust", h.Products.AdjustStock)
		products.GET("/:id/movements", h.Products.Movements)
	}

	categories := authed.Group("/categories", middleware.RequirePermission(PermProducts))
	{
		categories.POST("", h.Catalog.CreateCategory)
		categories.GET("", h.Catalog.ListCategories)
		categories.PUT("/:id", h.Catalog.UpdateCategory)
		categories.DELETE("/:id", h.Catalog.DeleteCategory)
	}

	suppliers := authed.Group("/suppliers", middleware.RequirePermission(PermProducts))
	{
		suppliers.POST("", h.Catalog.CreateSupplier)
		suppliers.GET("", h.Catalog.ListSuppliers)
		suppliers.PUT("/:id", h.Catalog.UpdateSupplier)
		suppliers.DELETE("/:id", h.Catalog.DeleteSupplier)
	}

	customers := authed.Group("/customers", middleware.RequirePermission(PermSales))
	{
		customers.POST("", h.Catalog.CreateCustomer)
		customers.GET("", h.Catalog.ListCustomers)
		customers.GET("/:id", h.Catalog.GetCustomer)
		customers.PUT("/:id", h.Catalog.UpdateCustomer)
	}

	sales := authed.Group("/sales", middleware.RequirePermission(PermSales))
	{
		sales.POST("", h.Sales.Create)
		sales.GET("", h.Sales.List)
		sales.GET("/today", h.Sales.Today)
		sales.GET("/returns", h.Sales.ListReturns)
		sales.GET("/number/:number", h.Sales.GetByNumber)
		sales.GET("/:id", h.Sales.Get)
		sales.POST("/:id/returns", h.Sales.CreateReturn)
	}

	repairs := authed.Group("/repairs", middleware.RequirePermission(PermRepairs))
	{
		repairs.POST("", h.Repairs.Create)
		repairs.GET("", h.Repairs.List)
		repairs.GET("/pending", h.Repairs.Pending)
		repairs.GET("/number/:number", h.Repairs.GetByNumber)
		repairs.GET("/:id", h.Repairs.Get)
		repairs.PUT("/:id", h.Repairs.Update)
	}

	transfers := authed.Group("/transfers", middleware.RequirePermission(PermTransfers))
	{
		transfers.POST("", h.Transfers.Create)
		transfers.GET("", h.Transfers.List)
		transfers.GET("/commission", h.Transfers.Commission)
		transfers.GET("/reference/:reference", h.Transfers.GetByReference)
		transfers.GET("/:id", h.Transfers.Get)
		transfers.PUT("/:id", h.Transfers.Update)
		transfers.DELETE("/:id", h.Transfers.Delete)
	}

	reports := authed.Group("/reports", middleware.RequirePermission(PermReports))
	{
		reports.GET("/sales", h.Reports.Sales)
		reports.GET("/sales/today", h.Reports.Today)
		reports.GET("/sales/daily", h.Reports.Daily)
		reports.GET("/top-products", h.Reports.TopProducts)
		reports.GET("/valuation", h.Reports.Valuation)
	}

	backups := authed.Group("/backups", middleware.RequirePermission(PermBackups))
	{
		backups.POST("", h.Backup.Create)
		backups.GET("", h.Backup.List)
		backups.POST("/restore", h.Backup.Restore)
		backups.POST("/cleanup", h.Backup.Cleanup)
		backups.POST("/export", h.Backup.Export)
	}

	users := authed.Group("/users", middleware.RequirePermission(PermUsers))
	{
		users.POST("", h.Users.Create)
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id", h.Users.Update)
		users.PUT("/:id/password", h.Users.ChangePassword)
		users.POST("/:id/activate", h.Users.Activate)
		users.POST("/:id/deactivate", h.Users.Deactivate)
	}

	roles := authed.Group("/roles", middleware.RequirePermission(PermUsers))
	{
		roles.POST("", h.Users.CreateRole)
		roles.GET("", h.Users.ListRoles)
		roles.PUT("/:id", h.Users.UpdateRole)
		roles.DELETE("/:id", h.Users.DeleteRole)
	}

	settings := authed.Group("/settings", middleware.RequirePermission(PermSettings))
	{
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
	}

	authed.GET("/audit", middleware.RequirePermission(PermUsers), h.Audit.List)

	return router
}
