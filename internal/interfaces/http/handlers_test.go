package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/application/audit"
	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/application/sales"
	"github.com/jhoicas/inventario-engine/internal/application/usecase"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-engine/internal/interfaces/http"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

const (
	productID  = "prod-1"
	clientID   = "cli-1"
	warehouseA = "wh-a"
	warehouseB = "wh-b"
	roleSeller = "vendedor"
)

type testEnv struct {
	app   *fiber.App
	store *memory.Store
	gate  *inventory.Gate
}

// newTestEnv arma la API completa sobre el store en memoria:
// bodega A con 5 unidades, bodega B con 3, producto a 10.00 y un cliente activo.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: warehouseA, Code: "A", Name: "Bodega A", Active: true, CreatedAt: now}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: warehouseB, Code: "B", Name: "Bodega B", Active: true, CreatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: productID, SKU: "SKU-1", Name: "Martillo", Price: decimal.NewFromInt(10), MinStock: 20, Active: true, CreatedAt: now}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: clientID, Name: "Ferretería Sur", TaxID: "900123", Active: true, CreatedAt: now}))
	require.NoError(t, repos.Stock.Upsert(ctx, &entity.StockRecord{ProductID: productID, WarehouseID: warehouseA, Quantity: 5, UpdatedAt: now, UpdatedBy: "seed"}))
	require.NoError(t, repos.Stock.Upsert(ctx, &entity.StockRecord{ProductID: productID, WarehouseID: warehouseB, Quantity: 3, UpdatedAt: now, UpdatedBy: "seed"}))

	log := logger.Nop()
	gate := inventory.NewGate(50 * time.Millisecond)
	recorder := audit.NewRecorder(store.Audit(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:      usecase.NewWarehouseUseCase(repos.Warehouses),
		ProductUC:        usecase.NewProductUseCase(repos.Products),
		ClientUC:         sales.NewClientUseCase(repos.Clients),
		CreateSale:       sales.NewCreateSaleUseCase(store, gate, recorder, repos.Sales, repos.Clients, repos.Products, log),
		Receipt:          sales.NewReceiptUseCase(repos.Sales, repos.Clients, repos.Products, pdf.NewMarotoPDFGenerator("Inventario Test")),
		RegisterMovement: inventory.NewRegisterMovementUseCase(store, gate, recorder, log),
		MovementQuery:    inventory.NewMovementQueryUseCase(repos.Movements),
		StockQuery:       inventory.NewStockQueryUseCase(repos.Products, repos.Warehouses, repos.Stock),
		Replenishment:    inventory.NewReplenishmentUseCase(repos.Products, repos.Stock),
		Prices:           inventory.NewPriceReconciliationUseCase(repos.Products, store, gate, recorder, log),
		JWTSecret:        testJWTSecret,
	})
	return &testEnv{app: app, store: store, gate: gate}
}

func (e *testEnv) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) quantity(t *testing.T, warehouseID string) int {
	t.Helper()
	rec, err := e.store.Repos().Stock.Get(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.Quantity
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSale_DescuentaDeVariasBodegas(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		ClientID: clientID,
		Lines:    []dto.SaleLineRequest{{ProductID: productID, Quantity: 7}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)

	assert.NotEmpty(t, sale.Number)
	assert.Equal(t, testUserID, sale.SellerID)
	assert.Equal(t, "Ferretería Sur", sale.ClientName)
	assert.True(t, decimal.NewFromInt(70).Equal(sale.Total), "total = 7 x 10")
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "Martillo", sale.Lines[0].ProductName)

	// Orden alfabético: Bodega A (5) se agota, el resto sale de B.
	assert.Equal(t, 0, env.quantity(t, warehouseA))
	assert.Equal(t, 1, env.quantity(t, warehouseB))
}

func TestCreateSale_StockInsuficiente_NoModificaExistencias(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		ClientID: clientID,
		Lines: []dto.SaleLineRequest{
			{ProductID: productID, Quantity: 4},
			{ProductID: productID, Quantity: 5},
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	assert.Equal(t, 5, env.quantity(t, warehouseA))
	assert.Equal(t, 3, env.quantity(t, warehouseB))
}

func TestCreateSale_SinCliente_Retorna400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCreateSale_BodegueroNoPuedeVender(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sales", "bodeguero", dto.CreateSaleRequest{
		ClientID: clientID,
		Lines:    []dto.SaleLineRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateSale_MotorOcupado_Retorna503(t *testing.T) {
	env := newTestEnv(t)
	release, err := env.gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		ClientID: clientID,
		Lines:    []dto.SaleLineRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, "BUSY", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 5, env.quantity(t, warehouseA))
}

func TestSaleReceipt_DevuelvePDF(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		ClientID: clientID,
		Lines:    []dto.SaleLineRequest{{ProductID: productID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)

	resp = env.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", roleSeller, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestUpdateSaleNotes_QuedaAuditado(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/sales", roleSeller, dto.CreateSaleRequest{
		ClientID: clientID,
		Lines:    []dto.SaleLineRequest{{ProductID: productID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)

	resp = env.do(t, http.MethodPatch, "/api/sales/"+sale.ID, roleSeller, dto.UpdateSaleRequest{Notes: "entregar en la tarde"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "entregar en la tarde", decode[dto.SaleResponse](t, resp).Notes)

	entries, err := env.store.Audit().ListByRecord(context.Background(), audit.TableSales, sale.ID)
	require.NoError(t, err)
	var fields []string
	for _, e := range entries {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "notes")
}

func TestCreateMovement_TipoDesconocido_Retorna400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/inventory/movements", "bodeguero", dto.CreateMovementRequest{
		Type:  "RETURN",
		Lines: []dto.MovementLineRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCreateMovement_TransferenciaConservaTotal(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/inventory/movements", "bodeguero", dto.CreateMovementRequest{
		Type:                   "transfer",
		SourceWarehouseID:      warehouseA,
		DestinationWarehouseID: warehouseB,
		Lines:                  []dto.MovementLineRequest{{ProductID: productID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mv := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, "TRANSFER", mv.Type)
	require.Len(t, mv.Lines, 1)

	resp = env.do(t, http.MethodGet, "/api/inventory/products/"+productID+"/stock", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[dto.ProductStockResponse](t, resp)
	assert.Equal(t, 8, stock.Total)
	assert.Equal(t, 3, env.quantity(t, warehouseA))
	assert.Equal(t, 5, env.quantity(t, warehouseB))
}

func TestCreateMovement_SalidaMayorAlStock_Retorna409(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/inventory/movements", "bodeguero", dto.CreateMovementRequest{
		Type:              "ISSUE",
		SourceWarehouseID: warehouseB,
		Lines:             []dto.MovementLineRequest{{ProductID: productID, Quantity: 4}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 3, env.quantity(t, warehouseB))
}

func TestCreateMovement_EntradaAplicaPrecios(t *testing.T) {
	env := newTestEnv(t)
	higher := decimal.NewFromInt(12)

	resp := env.do(t, http.MethodPost, "/api/inventory/movements", "admin", dto.CreateMovementRequest{
		Type:                   "RECEIPT",
		DestinationWarehouseID: warehouseA,
		ApplyPrices:            true,
		Lines:                  []dto.MovementLineRequest{{ProductID: productID, Quantity: 10, UnitPrice: &higher}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mv := decode[dto.MovementResponse](t, resp)
	require.Len(t, mv.PriceUpdates, 1)
	assert.True(t, mv.PriceUpdates[0].Applied)
	assert.Equal(t, 15, env.quantity(t, warehouseA))

	p, err := env.store.Repos().Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, higher.Equal(p.Price))
}

func TestPriceUpdates_DisminucionRequiereConfirmacion(t *testing.T) {
	env := newTestEnv(t)
	lower := decimal.NewFromInt(8)
	body := dto.PriceCheckRequest{Lines: []dto.PriceLineRequest{{ProductID: productID, UnitPrice: &lower}}}

	resp := env.do(t, http.MethodPost, "/api/inventory/price-updates/apply", "bodeguero", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updates := decode[[]dto.PriceUpdateResponse](t, resp)
	require.Len(t, updates, 1)
	assert.True(t, updates[0].NeedsConfirmation)
	assert.False(t, updates[0].Applied)

	body.ConfirmLowerPrices = true
	resp = env.do(t, http.MethodPost, "/api/inventory/price-updates/apply", "bodeguero", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updates = decode[[]dto.PriceUpdateResponse](t, resp)
	require.Len(t, updates, 1)
	assert.True(t, updates[0].Applied)
}

func TestLowStock_SugierePedido(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/inventory/replenishment", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]dto.LowStockItemDTO](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].CurrentStock)
	assert.Equal(t, 30, items[0].IdealStock)
	assert.Equal(t, 22, items[0].SuggestedOrderQty)
	assert.Equal(t, 1, items[0].Priority)
}

func TestProducts_EscrituraSoloAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := dto.CreateProductRequest{SKU: "SKU-2", Name: "Destornillador", Price: decimal.NewFromInt(5)}

	resp := env.do(t, http.MethodPost, "/api/products", "vendedor", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/products", "admin", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/products", "admin", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)
}

func TestProducts_NoEncontrado(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/products/no-existe", "vendedor", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWarehouseStock_BodegaInexistente(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/inventory/warehouses/no-existe/stock", "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClients_CrearYListar(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/clients", "vendedor", dto.CreateClientRequest{Name: "Obras Norte", TaxID: "800555"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/clients?limit=10", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ClientListResponse](t, resp)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 10, list.Page.Limit)
}
