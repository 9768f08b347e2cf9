package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/application/sales"
	"github.com/jhoicas/inventario-engine/internal/application/usecase"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-engine/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/inventario-engine/internal/interfaces/http"
	"github.com/jhoicas/inventario-engine/pkg/config"
	"github.com/jhoicas/inventario-engine/pkg/logger"
	"github.com/jhoicas/inventario-engine/pkg/telemetry"
)

// version se sobrescribe en el build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Engine.StorageDriver).
		Dur("lock_timeout", cfg.Engine.LockTimeout).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar telemetría")
	}

	// Almacenamiento: PostgreSQL (transacciones con SELECT FOR UPDATE) o memoria (desarrollo y pruebas).
	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
		sink     audit.Sink
	)
	switch cfg.Engine.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		txRunner, repos, sink = store, store.Repos(), store.Audit()
		if cfg.Engine.SeedFile != "" {
			loadSeed(ctx, log, store, cfg.Engine.SeedFile)
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner, repos, sink = postgres.NewTxRunner(pool), postgres.NewRepos(pool), postgres.NewAuditRepository(pool)
	}

	gate := inventory.NewGate(cfg.Engine.LockTimeout)
	recorder := audit.NewRecorder(sink, log.Component("audit"))

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, gate, recorder, log)
	pricesUC := inventory.NewPriceReconciliationUseCase(repos.Products, txRunner, gate, recorder, log)
	createSaleUC := sales.NewCreateSaleUseCase(txRunner, gate, recorder, repos.Sales, repos.Clients, repos.Products, log)

	// PDF: comprobante de venta
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	receiptUC := sales.NewReceiptUseCase(repos.Sales, repos.Clients, repos.Products, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Engine API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:      usecase.NewWarehouseUseCase(repos.Warehouses),
		ProductUC:        usecase.NewProductUseCase(repos.Products),
		ClientUC:         sales.NewClientUseCase(repos.Clients),
		CreateSale:       createSaleUC,
		Receipt:          receiptUC,
		RegisterMovement: registerMovementUC,
		MovementQuery:    inventory.NewMovementQueryUseCase(repos.Movements),
		StockQuery:       inventory.NewStockQueryUseCase(repos.Products, repos.Warehouses, repos.Stock),
		Replenishment:    inventory.NewReplenishmentUseCase(repos.Products, repos.Stock),
		Prices:           pricesUC,
		JWTSecret:        cfg.JWT.Secret,
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

func loadSeed(ctx context.Context, log *logger.Logger, store *memory.Store, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("abrir catálogo inicial")
	}
	defer f.Close()

	rows, err := seed.Decode(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer catálogo inicial")
	}
	res, err := seed.Apply(ctx, store, rows, "seed", time.Now())
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("cargar catálogo inicial")
	}
	log.Info().
		Int("products", res.Products).
		Int("warehouses", res.Warehouses).
		Int("stock_records", res.StockRecords).
		Msg("catálogo inicial cargado")
}
