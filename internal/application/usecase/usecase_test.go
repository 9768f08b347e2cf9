package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/infrastructure/memory"
)

func TestProductUseCase_Create(t *testing.T) {
	uc := NewProductUseCase(memory.NewStore().Repos().Products)
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{SKU: " MRT-01 ", Name: "Martillo", Price: decimal.NewFromInt(10), MinStock: 4})
	require.NoError(t, err)
	assert.Equal(t, "MRT-01", out.SKU)
	assert.True(t, out.Active)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "MRT-01", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	cases := []dto.CreateProductRequest{
		{Name: "Sin SKU"},
		{SKU: "X-1"},
		{SKU: "X-2", Name: "Precio", Price: decimal.NewFromInt(-1)},
		{SKU: "X-3", Name: "Mínimo", MinStock: -1},
	}
	for _, in := range cases {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in.SKU)
	}
}

func TestProductUseCase_LongitudDelSKUEnCaracteres(t *testing.T) {
	uc := NewProductUseCase(memory.NewStore().Repos().Products)
	ctx := context.Background()

	// 50 caracteres, 100 bytes.
	sku := strings.Repeat("Ñ", 50)
	out, err := uc.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: "Cañería"})
	require.NoError(t, err)
	assert.Equal(t, sku, out.SKU)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: strings.Repeat("Ñ", 51), Name: "Cañería larga"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_UpdateListDeactivate(t *testing.T) {
	uc := NewProductUseCase(memory.NewStore().Repos().Products)
	ctx := context.Background()
	a, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Alicate", Price: decimal.NewFromInt(8)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "B-1", Name: "Broca", Price: decimal.NewFromInt(2)})
	require.NoError(t, err)

	price := decimal.RequireFromString("8.75")
	updated, err := uc.Update(ctx, a.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))

	blank := ""
	_, err = uc.Update(ctx, a.ID, dto.UpdateProductRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.Deactivate(ctx, a.ID))
	active, err := uc.List(ctx, 0, 0, true)
	require.NoError(t, err)
	assert.Len(t, active.Items, 1)
	assert.Equal(t, 50, active.Page.Limit)

	all, err := uc.List(ctx, 500, 0, false)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 200, all.Page.Limit)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouseUseCase(t *testing.T) {
	uc := NewWarehouseUseCase(memory.NewStore().Repos().Warehouses)
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: " cen ", Name: "Central"})
	require.NoError(t, err)
	assert.Equal(t, "CEN", out.Code)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "CEN", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "NOR"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: strings.Repeat("Ñ", 21), Name: "Larga"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "NOR", Name: "Norte"})
	require.NoError(t, err)
	require.NoError(t, uc.Deactivate(ctx, out.ID))

	active, err := uc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "Norte", active.Items[0].Name)

	all, err := uc.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)

	assert.ErrorIs(t, uc.Deactivate(ctx, "nope"), domain.ErrNotFound)
}
