package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/application/sales"
	"github.com/jhoicas/inventario-engine/internal/application/usecase"
	"github.com/jhoicas/inventario-engine/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	ClientUC         *sales.ClientUseCase
	CreateSale       *sales.CreateSaleUseCase
	Receipt          *sales.ReceiptUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQuery    *inventory.MovementQueryUseCase
	StockQuery       *inventory.StockQueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Prices           *inventory.PriceReconciliationUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(jwt.RoleAdmin)
	seller := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)
	stocker := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	// Warehouses: lectura para todos los roles, escritura solo admin
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", admin, warehouseHandler.Update)
	warehouses.Delete("/:id", admin, warehouseHandler.Deactivate)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", admin, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Deactivate)

	// Clients (ventas)
	clients := protected.Group("/clients", seller)
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", admin, clientHandler.Deactivate)

	// Sales
	salesGroup := protected.Group("/sales", seller)
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Receipt)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Patch("/:id", saleHandler.UpdateNotes)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Inventory: movimientos y precios para bodega; consultas de existencias para todos
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.MovementQuery, deps.StockQuery, deps.Replenishment, deps.Prices)
	invGroup.Post("/movements", stocker, inventoryHandler.CreateMovement)
	invGroup.Get("/movements", stocker, inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", stocker, inventoryHandler.GetMovement)
	invGroup.Get("/products/:id/stock", inventoryHandler.ProductStock)
	invGroup.Get("/warehouses/:id/stock", inventoryHandler.WarehouseStock)
	invGroup.Get("/replenishment", stocker, inventoryHandler.LowStock)
	invGroup.Post("/price-updates/check", stocker, inventoryHandler.CheckPrices)
	invGroup.Post("/price-updates/apply", stocker, inventoryHandler.ApplyPrices)
}
