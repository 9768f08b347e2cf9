// Package memory implementa los repositorios y el TxRunner en memoria.
// Cada transacción trabaja sobre una copia del estado y la publica al confirmar;
// las transacciones se serializan entre sí.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

type stockKey struct {
	productID   string
	warehouseID string
}

type state struct {
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	clients    map[string]entity.Client
	stock      map[stockKey]entity.StockRecord
	sales      map[string]entity.Sale
	movements  map[string]entity.StockMovement
	audit      []entity.AuditEntry
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		clients:    make(map[string]entity.Client),
		stock:      make(map[stockKey]entity.StockRecord),
		sales:      make(map[string]entity.Sale),
		movements:  make(map[string]entity.StockMovement),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		clients:    make(map[string]entity.Client, len(s.clients)),
		stock:      make(map[stockKey]entity.StockRecord, len(s.stock)),
		sales:      make(map[string]entity.Sale, len(s.sales)),
		movements:  make(map[string]entity.StockMovement, len(s.movements)),
		audit:      append([]entity.AuditEntry(nil), s.audit...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	// Las líneas no se modifican después de Create; compartir los slices es seguro.
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	return c
}

// view acceso al estado: directo al store (con candados) o a la copia de una transacción.
type view interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

// Store estado compartido en memoria.
type Store struct {
	txMu sync.Mutex   // serializa escritores (transacciones y escrituras directas)
	mu   sync.RWMutex // protege st
	st   *state
}

var _ inventory.TxRunner = (*Store)(nil)

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Run ejecuta fn sobre una copia del estado; si fn no falla la copia reemplaza al estado.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := &txView{st: s.st.clone()}
	s.mu.RUnlock()

	if err := fn(reposFor(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work.st
	s.mu.Unlock()
	return nil
}

// Repos repositorios fuera de transacción.
func (s *Store) Repos() inventory.Repos {
	return reposFor(s)
}

// Audit bitácora del store (también implementa audit.Sink).
func (s *Store) Audit() *AuditRepo {
	return &AuditRepo{v: s}
}

type txView struct {
	st *state
}

func (t *txView) read(fn func(st *state)) { fn(t.st) }

func (t *txView) write(fn func(st *state) error) error { return fn(t.st) }

func reposFor(v view) inventory.Repos {
	return inventory.Repos{
		Products:   &ProductRepo{v: v},
		Warehouses: &WarehouseRepo{v: v},
		Clients:    &ClientRepo{v: v},
		Stock:      &StockRepo{v: v},
		Sales:      &SaleRepo{v: v},
		Movements:  &StockMovementRepo{v: v},
	}
}

// page aplica limit/offset sobre n elementos; limit <= 0 no limita.
func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
