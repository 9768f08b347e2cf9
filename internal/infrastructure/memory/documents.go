package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var (
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.AuditRepository         = (*AuditRepo)(nil)
	_ audit.Sink                         = (*AuditRepo)(nil)
)

// SaleRepo ventas en memoria.
type SaleRepo struct{ v view }

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.ID)
		}
		for _, other := range st.sales {
			if other.Number == s.Number {
				return fmt.Errorf("%w: número de venta %s", domain.ErrDuplicate, s.Number)
			}
		}
		stored := *s
		stored.Lines = append([]entity.SaleLine(nil), s.Lines...)
		st.sales[s.ID] = stored
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.v.read(func(st *state) {
		if s, ok := st.sales[id]; ok {
			s.Lines = append([]entity.SaleLine(nil), s.Lines...)
			out = &s
		}
	})
	return out, nil
}

func (r *SaleRepo) NumberExists(_ context.Context, number string) (bool, error) {
	exists := false
	r.v.read(func(st *state) {
		for _, s := range st.sales {
			if s.Number == number {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r *SaleRepo) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	var list []*entity.Sale
	r.v.read(func(st *state) {
		for _, s := range st.sales {
			s.Lines = nil
			list = append(list, &s)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Number > list[j].Number
	})
	from, to := page(len(list), limit, offset)
	return list[from:to], nil
}

func (r *SaleRepo) UpdateNotes(_ context.Context, id, notes, actorID string, at time.Time) error {
	return r.v.write(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
		}
		s.Notes, s.UpdatedBy, s.UpdatedAt = notes, actorID, at
		st.sales[id] = s
		return nil
	})
}

// StockMovementRepo movimientos en memoria.
type StockMovementRepo struct{ v view }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.movements[m.ID]; ok {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
		}
		for _, other := range st.movements {
			if other.Number == m.Number {
				return fmt.Errorf("%w: número de movimiento %s", domain.ErrDuplicate, m.Number)
			}
		}
		stored := *m
		stored.Lines = append([]entity.StockMovementLine(nil), m.Lines...)
		st.movements[m.ID] = stored
		return nil
	})
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	r.v.read(func(st *state) {
		if m, ok := st.movements[id]; ok {
			m.Lines = append([]entity.StockMovementLine(nil), m.Lines...)
			out = &m
		}
	})
	return out, nil
}

func (r *StockMovementRepo) NumberExists(_ context.Context, number string) (bool, error) {
	exists := false
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.Number == number {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r *StockMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if f.Type != entity.MovementTypeUnknown && m.Type != f.Type {
				continue
			}
			if f.WarehouseID != "" && m.SourceWarehouseID != f.WarehouseID && m.DestinationWarehouseID != f.WarehouseID {
				continue
			}
			m.Lines = nil
			list = append(list, &m)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Number > list[j].Number
	})
	from, to := page(len(list), f.Limit, f.Offset)
	return list[from:to], nil
}

// AuditRepo bitácora en memoria. Escribe directo al store: se usa después del commit.
type AuditRepo struct{ v view }

func (r *AuditRepo) Insert(_ context.Context, e *entity.AuditEntry) error {
	return r.v.write(func(st *state) error {
		st.audit = append(st.audit, *e)
		return nil
	})
}

// LogChange implementa audit.Sink.
func (r *AuditRepo) LogChange(ctx context.Context, e entity.AuditEntry) error {
	return r.Insert(ctx, &e)
}

func (r *AuditRepo) ListByRecord(_ context.Context, table, recordID string) ([]*entity.AuditEntry, error) {
	var list []*entity.AuditEntry
	r.v.read(func(st *state) {
		for _, e := range st.audit {
			if e.Table == table && e.RecordID == recordID {
				list = append(list, &e)
			}
		}
	})
	return list, nil
}

// All todas las entradas en orden de escritura.
func (r *AuditRepo) All() []entity.AuditEntry {
	var out []entity.AuditEntry
	r.v.read(func(st *state) {
		out = append(out, st.audit...)
	})
	return out
}
