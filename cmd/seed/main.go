// seed carga un catálogo inicial (productos, bodegas y saldos de apertura) desde un CSV
// en la base PostgreSQL configurada y emite un token JWT de desarrollo.
//
// Uso: go run ./cmd/seed -file catalogo.csv [-role admin] [-user <uuid>]
// Con -file vacío solo se emite el token.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-engine/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/seed"
	"github.com/jhoicas/inventario-engine/pkg/config"
	"github.com/jhoicas/inventario-engine/pkg/jwt"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

func main() {
	file := flag.String("file", "", "CSV de catálogo (UTF-8 o ISO-8859-1)")
	role := flag.String("role", jwt.RoleAdmin, "rol del token de desarrollo: admin | bodeguero | vendedor")
	user := flag.String("user", "", "ID del actor del token (por defecto uno nuevo)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *file != "" {
		if cfg.Engine.StorageDriver != config.StoragePostgres {
			log.Fatal().Str("storage", cfg.Engine.StorageDriver).Msg("seed requiere STORAGE_DRIVER=postgres; con memory use SEED_FILE en la API")
		}
		res, err := load(context.Background(), cfg, *file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("cargar catálogo")
		}
		log.Info().
			Int("products", res.Products).
			Int("warehouses", res.Warehouses).
			Int("stock_records", res.StockRecords).
			Msg("catálogo cargado")
	}

	actor := *user
	if actor == "" {
		actor = uuid.New().String()
	}
	token, err := jwt.Generate(cfg.JWT.Secret, actor, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token (¿JWT_SECRET vacío?)")
	}
	fmt.Printf("Actor: %s\nRol:   %s\nToken: %s\n", actor, *role, token)
}

func load(ctx context.Context, cfg *config.Config, path string) (seed.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return seed.Result{}, err
	}
	defer f.Close()

	rows, err := seed.Decode(f)
	if err != nil {
		return seed.Result{}, err
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return seed.Result{}, err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, postgres.NewTxRunner(pool), rows, "seed", time.Now())
}
