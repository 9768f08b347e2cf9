package sales

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

const (
	seller  = "seller-1"
	client  = "c-1"
	hammer  = "p-hammer"
	nail    = "p-nail"
	central = "w-central"
	north   = "w-north"
)

type saleFixture struct {
	store *memory.Store
	repos inventory.Repos
	uc    *CreateSaleUseCase
}

// newSaleFixture martillo (10.00): Central 5, Norte 3. Clavo (0.50): Norte 1.
func newSaleFixture(t *testing.T, gateTimeout time.Duration) *saleFixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: central, Code: "CEN", Name: "Central", Active: true, CreatedAt: now}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: north, Code: "NOR", Name: "Norte", Active: true, CreatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: hammer, SKU: "MRT-01", Name: "Martillo", Price: decimal.NewFromInt(10), Active: true, CreatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: nail, SKU: "CLV-01", Name: "Clavo", Price: decimal.RequireFromString("0.50"), Active: true, CreatedAt: now}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: client, Name: "Obras Norte", TaxID: "800197268-4", Active: true, CreatedAt: now}))
	for _, rec := range []entity.StockRecord{
		{ProductID: hammer, WarehouseID: central, Quantity: 5},
		{ProductID: hammer, WarehouseID: north, Quantity: 3},
		{ProductID: nail, WarehouseID: north, Quantity: 1},
	} {
		rec.UpdatedAt = now
		require.NoError(t, repos.Stock.Upsert(ctx, &rec))
	}

	log := logger.Nop()
	uc := NewCreateSaleUseCase(store, inventory.NewGate(gateTimeout), audit.NewRecorder(store.Audit(), log),
		repos.Sales, repos.Clients, repos.Products, log)
	return &saleFixture{store: store, repos: repos, uc: uc}
}

func (f *saleFixture) qty(t *testing.T, productID, warehouseID string) int {
	t.Helper()
	rec, err := f.repos.Stock.Get(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return rec.Quantity
}

func saleOf(lines ...SaleLineInput) SaleInput {
	return SaleInput{SellerID: seller, ClientID: client, Lines: lines}
}

func TestCreateSale_DescuentaEnOrdenAlfabetico(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()

	res, err := f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: hammer, Quantity: 7}))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(res.Total))
	assert.Equal(t, 0, f.qty(t, hammer, central))
	assert.Equal(t, 1, f.qty(t, hammer, north))

	// Auditoría: un cambio por bodega más el alta de la venta.
	all := f.store.Audit().All()
	assert.Len(t, all, 3)
	for _, e := range all {
		assert.Equal(t, seller, e.ActorID)
	}
}

func TestCreateSale_LineasDelMismoProductoSeAgregan(t *testing.T) {
	f := newSaleFixture(t, time.Second)

	_, err := f.uc.CreateSale(context.Background(), saleOf(
		SaleLineInput{ProductID: hammer, Quantity: 4},
		SaleLineInput{ProductID: hammer, Quantity: 5},
	))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 9, insufficient.Requested)
	assert.Equal(t, 8, insufficient.Available)
	assert.Empty(t, insufficient.WarehouseName)

	assert.Equal(t, 5, f.qty(t, hammer, central))
	assert.Equal(t, 3, f.qty(t, hammer, north))
	list, err := f.repos.Sales.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.store.Audit().All())
}

func TestCreateSale_FaltanteEnSegundoProductoRevierteTodo(t *testing.T) {
	f := newSaleFixture(t, time.Second)

	_, err := f.uc.CreateSale(context.Background(), saleOf(
		SaleLineInput{ProductID: hammer, Quantity: 2},
		SaleLineInput{ProductID: nail, Quantity: 2},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.qty(t, hammer, central))
	assert.Equal(t, 1, f.qty(t, nail, north))
}

func TestCreateSale_PrecioExplicitoYCatalogo(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()
	discounted := decimal.RequireFromString("9.50")

	res, err := f.uc.CreateSale(ctx, saleOf(
		SaleLineInput{ProductID: hammer, Quantity: 2, UnitPrice: &discounted},
		SaleLineInput{ProductID: nail, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, "19.50", res.Total.StringFixed(2))

	sale, err := f.uc.GetSale(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2)
	assert.Equal(t, "Obras Norte", sale.ClientName)
	assert.Equal(t, "Martillo", sale.Lines[0].ProductName)
	assert.Equal(t, "0.50", sale.Lines[1].UnitPrice.StringFixed(2))
}

func TestCreateSale_Validacion(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	neg := decimal.NewFromInt(-1)
	cases := []struct {
		name string
		in   SaleInput
		want error
	}{
		{"sin cliente", SaleInput{SellerID: seller, Lines: []SaleLineInput{{ProductID: hammer, Quantity: 1}}}, domain.ErrClientRequired},
		{"sin vendedor", SaleInput{ClientID: client, Lines: []SaleLineInput{{ProductID: hammer, Quantity: 1}}}, domain.ErrInvalidInput},
		{"sin líneas", SaleInput{SellerID: seller, ClientID: client}, domain.ErrInvalidInput},
		{"cantidad cero", saleOf(SaleLineInput{ProductID: hammer}), domain.ErrInvalidInput},
		// Se valida cada línea antes de agrupar: 3 + (-1) no pasa como 2.
		{"línea negativa", saleOf(SaleLineInput{ProductID: hammer, Quantity: 3}, SaleLineInput{ProductID: hammer, Quantity: -1}), domain.ErrInvalidInput},
		{"precio negativo", saleOf(SaleLineInput{ProductID: hammer, Quantity: 1, UnitPrice: &neg}), domain.ErrInvalidInput},
		{"cliente inexistente", SaleInput{SellerID: seller, ClientID: "nope", Lines: []SaleLineInput{{ProductID: hammer, Quantity: 1}}}, domain.ErrNotFound},
		{"producto inexistente", saleOf(SaleLineInput{ProductID: "nope", Quantity: 1}), domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateSale(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 5, f.qty(t, hammer, central))
}

func TestCreateSale_ClienteOProductoInactivo(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()

	p, err := f.repos.Products.GetByID(ctx, nail)
	require.NoError(t, err)
	p.Active = false
	require.NoError(t, f.repos.Products.Update(ctx, p))
	_, err = f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: nail, Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrProductInactive)

	inactive := false
	_, err = NewClientUseCase(f.repos.Clients).Update(ctx, client, dto.UpdateClientRequest{Active: &inactive})
	require.NoError(t, err)
	_, err = f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: hammer, Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrClientInactive)
}

func TestCreateSale_VentasConcurrentesSobreUltimaUnidad(t *testing.T) {
	f := newSaleFixture(t, 5*time.Second)
	const workers = 8

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CreateSale(context.Background(), saleOf(SaleLineInput{ProductID: nail, Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 0, f.qty(t, nail, north))
}

func TestCreateSale_ConsecutivoConSufijoEnElMismoSegundo(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	f.uc.now = func() time.Time { return fixed }
	ctx := context.Background()

	first, err := f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: hammer, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: hammer, Quantity: 1}))
	require.NoError(t, err)

	assert.Equal(t, "S-20240309-140507", first.Number)
	assert.Equal(t, "S-20240309-140507-01", second.Number)
}

func TestCreateSale_Ocupado(t *testing.T) {
	f := newSaleFixture(t, 20*time.Millisecond)
	release, err := f.uc.gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = f.uc.CreateSale(context.Background(), saleOf(SaleLineInput{ProductID: hammer, Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 5, f.qty(t, hammer, central))
}

func TestUpdateSaleNotes(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()
	res, err := f.uc.CreateSale(ctx, saleOf(SaleLineInput{ProductID: hammer, Quantity: 1}))
	require.NoError(t, err)
	before := len(f.store.Audit().All())

	require.NoError(t, f.uc.UpdateSaleNotes(ctx, res.ID, "retira el cliente", "admin-1"))
	require.NoError(t, f.uc.UpdateSaleNotes(ctx, res.ID, "retira el cliente", "admin-1"))
	assert.Len(t, f.store.Audit().All(), before+1, "repetir las mismas notas no audita")

	sale, err := f.uc.GetSale(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "retira el cliente", sale.Notes)
	assert.Equal(t, "admin-1", sale.UpdatedBy)

	assert.ErrorIs(t, f.uc.UpdateSaleNotes(ctx, "nope", "x", "admin-1"), domain.ErrNotFound)
}

func TestCreateSale_CantidadesFueraDeRango(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()

	// Una línea enorme más otra pequeña no puede dar un agregado negativo.
	_, err := f.uc.CreateSale(ctx, saleOf(
		SaleLineInput{ProductID: hammer, Quantity: math.MaxInt},
		SaleLineInput{ProductID: hammer, Quantity: 2},
	))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Dos líneas dentro del tope cuya suma supera el stock.
	_, err = f.uc.CreateSale(ctx, saleOf(
		SaleLineInput{ProductID: hammer, Quantity: entity.MaxQuantity},
		SaleLineInput{ProductID: hammer, Quantity: entity.MaxQuantity},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, f.qty(t, hammer, central))
	assert.Equal(t, 3, f.qty(t, hammer, north))
	list, err := f.repos.Sales.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// shrinkingStock a partir de la segunda lectura bloqueante del producto indicado
// pierde la última bodega, como si otro escritor la hubiera vaciado entre validar y asignar.
type shrinkingStock struct {
	repository.StockRepository
	productID string
	calls     int
}

func (s *shrinkingStock) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	recs, err := s.StockRepository.ListByProductForUpdate(ctx, productID)
	if err != nil || productID != s.productID {
		return recs, err
	}
	s.calls++
	if s.calls > 1 && len(recs) > 0 {
		recs = recs[:len(recs)-1]
	}
	return recs, nil
}

type shrinkingRunner struct {
	store     *memory.Store
	productID string
}

func (r shrinkingRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return r.store.Run(ctx, func(repos inventory.Repos) error {
		repos.Stock = &shrinkingStock{StockRepository: repos.Stock, productID: r.productID}
		return fn(repos)
	})
}

func TestCreateSale_FaltanteDeAsignacionRevierteTodo(t *testing.T) {
	f := newSaleFixture(t, time.Second)
	ctx := context.Background()
	log := logger.Nop()
	uc := NewCreateSaleUseCase(shrinkingRunner{store: f.store, productID: hammer}, inventory.NewGate(time.Second),
		audit.NewRecorder(f.store.Audit(), log), f.repos.Sales, f.repos.Clients, f.repos.Products, log)

	// El clavo se descuenta primero; el martillo valida 8 disponibles y al asignar solo ve Central (5).
	_, err := uc.CreateSale(ctx, saleOf(
		SaleLineInput{ProductID: nail, Quantity: 1},
		SaleLineInput{ProductID: hammer, Quantity: 7},
	))
	var shortfall *domain.AllocationShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 7, shortfall.Requested)
	assert.Equal(t, 2, shortfall.Remaining)
	assert.True(t, domain.IsConsistencyFailure(err))
	assert.False(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 1, f.qty(t, nail, north))
	assert.Equal(t, 5, f.qty(t, hammer, central))
	assert.Equal(t, 3, f.qty(t, hammer, north))
	list, err := f.repos.Sales.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.store.Audit().All())
}
