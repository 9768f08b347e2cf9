package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/pkg/config"
)

// testPool requiere TEST_DATABASE_URL apuntando a una base desechable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestStockRepo_PrimeraEntradaConcurrenteNoPierdeUnidades(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	now := time.Now()
	repos := NewRepos(pool)

	productID, warehouseID := uuid.New().String(), uuid.New().String()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: productID, SKU: "T-" + productID[:8], Name: "Tornillo", Price: decimal.NewFromInt(1),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{
		ID: warehouseID, Code: "T" + warehouseID[:8], Name: "Prueba", Active: true, CreatedAt: now, UpdatedAt: now,
	}))

	// Dos transacciones (como dos procesos) reciben 5 unidades en un par sin registro previo.
	runner := NewTxRunner(pool)
	receive := func(locked chan<- struct{}) error {
		return runner.Run(ctx, func(tx inventory.Repos) error {
			rec, err := tx.Stock.GetForUpdate(ctx, productID, warehouseID)
			if err != nil {
				return err
			}
			if locked != nil {
				close(locked)
				time.Sleep(150 * time.Millisecond)
			}
			rec.Quantity += 5
			rec.UpdatedAt = time.Now()
			return tx.Stock.Upsert(ctx, rec)
		})
	}

	locked := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = receive(locked)
	}()
	go func() {
		defer wg.Done()
		select {
		case <-locked:
		case <-time.After(5 * time.Second):
		}
		errs[1] = receive(nil)
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	rec, err := repos.Stock.Get(ctx, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
}
