package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo registros de stock en memoria. Dentro de una transacción el bloqueo de filas
// no hace falta: las transacciones ya están serializadas.
type StockRepo struct{ v view }

func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	out := &entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	r.v.read(func(st *state) {
		if rec, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			*out = rec
		}
	})
	return out, nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *StockRepo) Upsert(_ context.Context, rec *entity.StockRecord) error {
	if rec.Quantity < 0 {
		return &domain.InvariantViolationError{ProductID: rec.ProductID, WarehouseID: rec.WarehouseID, Quantity: rec.Quantity}
	}
	return r.v.write(func(st *state) error {
		stored := *rec
		stored.WarehouseName, stored.ProductName = "", ""
		st.stock[stockKey{rec.ProductID, rec.WarehouseID}] = stored
		return nil
	})
}

func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	return r.collect(func(rec entity.StockRecord, _ entity.Warehouse) bool {
		return rec.ProductID == productID
	}, byWarehouseName), nil
}

func (r *StockRepo) ListByProductForUpdate(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	return r.collect(func(rec entity.StockRecord, wh entity.Warehouse) bool {
		return rec.ProductID == productID && rec.Quantity > 0 && wh.Active
	}, byWarehouseName), nil
}

func (r *StockRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.StockRecord, error) {
	return r.collect(func(rec entity.StockRecord, _ entity.Warehouse) bool {
		return rec.WarehouseID == warehouseID
	}, byProductName), nil
}

func (r *StockRepo) TotalsByProduct(_ context.Context) (map[string]int, error) {
	totals := make(map[string]int)
	r.v.read(func(st *state) {
		for k, rec := range st.stock {
			totals[k.productID] += rec.Quantity
		}
	})
	return totals, nil
}

func (r *StockRepo) collect(match func(entity.StockRecord, entity.Warehouse) bool, less func(a, b *entity.StockRecord) bool) []*entity.StockRecord {
	var list []*entity.StockRecord
	r.v.read(func(st *state) {
		for _, rec := range st.stock {
			wh := st.warehouses[rec.WarehouseID]
			if !match(rec, wh) {
				continue
			}
			rec.WarehouseName = wh.Name
			rec.ProductName = st.products[rec.ProductID].Name
			list = append(list, &rec)
		}
	})
	sort.Slice(list, func(i, j int) bool { return less(list[i], list[j]) })
	return list
}

func byWarehouseName(a, b *entity.StockRecord) bool {
	if a.WarehouseName != b.WarehouseName {
		return a.WarehouseName < b.WarehouseName
	}
	return a.WarehouseID < b.WarehouseID
}

func byProductName(a, b *entity.StockRecord) bool {
	if a.ProductName != b.ProductName {
		return a.ProductName < b.ProductName
	}
	return a.ProductID < b.ProductID
}
