package seed

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-engine/internal/infrastructure/memory"
)

const catalog = `sku,name,category,price,min_stock,warehouse_code,quantity
MRT-01,Martillo Pequeño,Herramientas,12500.50,10,cen,40
MRT-01,Martillo Pequeño,Herramientas,12500.50,10,nor,5
TOR-02,Tornillo 3/8,Ferretería,150,100,,
`

func TestDecode_UTF8(t *testing.T) {
	rows, err := Decode(strings.NewReader(catalog))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Martillo Pequeño", rows[0].Name)
	assert.Equal(t, "CEN", rows[0].WarehouseCode)
	assert.True(t, decimal.RequireFromString("12500.50").Equal(rows[0].Price))
	assert.Equal(t, 40, rows[0].Quantity)
	assert.Equal(t, "", rows[2].WarehouseCode)
}

func TestDecode_ISO88591(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(catalog)
	require.NoError(t, err)

	rows, err := Decode(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "Martillo Pequeño", rows[0].Name)
	assert.Equal(t, "Ferretería", rows[2].Category)
}

func TestDecode_Errores(t *testing.T) {
	cases := map[string]string{
		"sin columna price":   "sku,name\nA,B\n",
		"precio negativo":     "sku,name,price\nA,B,-1\n",
		"cantidad sin bodega": "sku,name,price,quantity\nA,B,1,5\n",
		"vacío":               "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestApply_CreaCatalogoYSaldos(t *testing.T) {
	store := memory.NewStore()
	rows, err := Decode(strings.NewReader(catalog))
	require.NoError(t, err)

	ctx := context.Background()
	res, err := Apply(ctx, store, rows, "seed", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Result{Products: 2, Warehouses: 2, StockRecords: 2}, res)

	repos := store.Repos()
	p, err := repos.Products.GetBySKU(ctx, "MRT-01")
	require.NoError(t, err)
	require.NotNil(t, p)
	totals, err := repos.Stock.TotalsByProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, totals[p.ID])

	// Segunda carga: mismos IDs, saldos fijados de nuevo.
	res, err = Apply(ctx, store, rows, "seed", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Warehouses)
	again, err := repos.Products.GetBySKU(ctx, "MRT-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	totals, err = repos.Stock.TotalsByProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, totals[p.ID])
}
