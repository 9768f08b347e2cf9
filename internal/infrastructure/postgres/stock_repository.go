package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const ensureStockRowSQL = `
	INSERT INTO stock_records (product_id, warehouse_id, quantity)
	VALUES ($1, $2, 0)
	ON CONFLICT (product_id, warehouse_id) DO NOTHING`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	return r.get(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at, updated_by
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Si la fila no existe la crea en cero antes de bloquearla: dos transacciones que reciben
// por primera vez el mismo producto en la misma bodega se serializan sobre esa fila.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	if _, err := r.q.Exec(ctx, ensureStockRowSQL, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	return r.get(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at, updated_by
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`, productID, warehouseID)
}

func (r *StockRepo) get(ctx context.Context, query, productID, warehouseID string) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt, &s.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad (por producto y bodega). El CHECK de la tabla rechaza negativos.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, warehouse_id, quantity, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.WarehouseID, stock.Quantity, stock.UpdatedAt, stock.UpdatedBy)
	if err != nil {
		if isCheckViolation(err) {
			return &domain.InvariantViolationError{ProductID: stock.ProductID, WarehouseID: stock.WarehouseID, Quantity: stock.Quantity}
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByProduct registros del producto con el nombre de la bodega, por nombre de bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	return r.list(ctx, `
		SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at, s.updated_by, w.name, p.name
		FROM stock_records s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1
		ORDER BY w.name, w.id`, productID)
}

// ListByProductForUpdate fuentes de asignación: stock > 0 en bodegas activas, bloqueadas, por nombre de bodega.
func (r *StockRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	return r.list(ctx, `
		SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at, s.updated_by, w.name, p.name
		FROM stock_records s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1 AND s.quantity > 0 AND w.active
		ORDER BY w.name, w.id
		FOR UPDATE OF s`, productID)
}

// ListByWarehouse registros de la bodega con el nombre del producto.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockRecord, error) {
	return r.list(ctx, `
		SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at, s.updated_by, w.name, p.name
		FROM stock_records s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN products p ON p.id = s.product_id
		WHERE s.warehouse_id = $1
		ORDER BY p.name, p.id`, warehouseID)
}

func (r *StockRepo) list(ctx context.Context, query, arg string) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt, &s.UpdatedBy,
			&s.WarehouseName, &s.ProductName); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// TotalsByProduct suma por producto de todas las bodegas.
func (r *StockRepo) TotalsByProduct(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, COALESCE(SUM(quantity), 0)::int FROM stock_records GROUP BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	defer rows.Close()
	totals := make(map[string]int)
	for rows.Next() {
		var productID string
		var total int
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, fmt.Errorf("scan stock total: %w", err)
		}
		totals[productID] = total
	}
	return totals, rows.Err()
}
