package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ClientRepository    = (*ClientRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ v view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
		}
		cur.Name, cur.Category, cur.Price = p.Name, p.Category, p.Price
		cur.MinStock, cur.Active, cur.UpdatedAt = p.MinStock, p.Active, p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdatePrice(_ context.Context, id string, price decimal.Decimal, at time.Time) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		cur.Price, cur.UpdatedAt = price, at
		st.products[id] = cur
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int, onlyActive bool) ([]*entity.Product, error) {
	var list []*entity.Product
	r.v.read(func(st *state) {
		for _, p := range st.products {
			if onlyActive && !p.Active {
				continue
			}
			list = append(list, &p)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ v view }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.ID)
		}
		for _, other := range st.warehouses {
			if other.Code == w.Code {
				return fmt.Errorf("%w: bodega con código %s", domain.ErrDuplicate, w.Code)
			}
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *WarehouseRepo) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		for _, w := range st.warehouses {
			if w.Code == code {
				out = &w
				return
			}
		}
	})
	return out, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.warehouses[w.ID]
		if !ok {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, w.ID)
		}
		cur.Name, cur.Address, cur.Active, cur.UpdatedAt = w.Name, w.Address, w.Active, w.UpdatedAt
		st.warehouses[w.ID] = cur
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, onlyActive bool) ([]*entity.Warehouse, error) {
	var list []*entity.Warehouse
	r.v.read(func(st *state) {
		for _, w := range st.warehouses {
			if onlyActive && !w.Active {
				continue
			}
			list = append(list, &w)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// ClientRepo clientes en memoria.
type ClientRepo struct{ v view }

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.clients[c.ID]; ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrDuplicate, c.ID)
		}
		for _, other := range st.clients {
			if other.TaxID == c.TaxID {
				return fmt.Errorf("%w: cliente con identificación %s", domain.ErrDuplicate, c.TaxID)
			}
		}
		st.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	r.v.read(func(st *state) {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *ClientRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Client, error) {
	var out *entity.Client
	r.v.read(func(st *state) {
		for _, c := range st.clients {
			if c.TaxID == taxID {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.clients[c.ID]
		if !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, c.ID)
		}
		cur.Name, cur.Email, cur.Phone, cur.Active, cur.UpdatedAt = c.Name, c.Email, c.Phone, c.Active, c.UpdatedAt
		st.clients[c.ID] = cur
		return nil
	})
}

func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	var list []*entity.Client
	r.v.read(func(st *state) {
		for _, c := range st.clients {
			list = append(list, &c)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}
