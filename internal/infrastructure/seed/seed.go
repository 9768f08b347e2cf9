// Package seed carga un catálogo inicial (productos, bodegas y saldos de apertura) desde CSV.
//
// Columnas (encabezado obligatorio, orden libre):
//
//	sku,name,category,price,min_stock,warehouse_code,quantity
//
// sku, name y price son obligatorias. El archivo puede venir en UTF-8 o ISO-8859-1.
package seed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-engine/internal/application/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// Row fila del catálogo.
type Row struct {
	SKU           string
	Name          string
	Category      string
	Price         decimal.Decimal
	MinStock      int
	WarehouseCode string
	Quantity      int
}

// Result conteo de registros creados o actualizados.
type Result struct {
	Products     int
	Warehouses   int
	StockRecords int
}

var required = []string{"sku", "name", "price"}

// Decode lee el CSV. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
func Decode(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("seed: leer csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("seed: archivo vacío")
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("seed: falta la columna %q", name)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		row := Row{
			SKU:           get(rec, "sku"),
			Name:          get(rec, "name"),
			Category:      get(rec, "category"),
			WarehouseCode: strings.ToUpper(get(rec, "warehouse_code")),
		}
		if row.SKU == "" || row.Name == "" {
			return nil, fmt.Errorf("seed: línea %d: sku y name son obligatorios", line)
		}
		if row.Price, err = decimal.NewFromString(get(rec, "price")); err != nil || row.Price.IsNegative() {
			return nil, fmt.Errorf("seed: línea %d: precio inválido %q", line, get(rec, "price"))
		}
		if row.MinStock, err = atoiDefault(get(rec, "min_stock")); err != nil || row.MinStock < 0 {
			return nil, fmt.Errorf("seed: línea %d: min_stock inválido", line)
		}
		if row.Quantity, err = atoiDefault(get(rec, "quantity")); err != nil || row.Quantity < 0 || row.Quantity > entity.MaxQuantity {
			return nil, fmt.Errorf("seed: línea %d: quantity inválida", line)
		}
		if row.Quantity > 0 && row.WarehouseCode == "" {
			return nil, fmt.Errorf("seed: línea %d: quantity sin warehouse_code", line)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Apply crea productos y bodegas faltantes y fija los saldos de apertura, todo en una transacción.
// Un producto existente (mismo SKU) conserva su ID; se actualizan nombre, categoría, precio y mínimo.
func Apply(ctx context.Context, runner inventory.TxRunner, rows []Row, actor string, now time.Time) (Result, error) {
	var res Result
	err := runner.Run(ctx, func(repos inventory.Repos) error {
		res = Result{}
		products := make(map[string]*entity.Product)
		warehouses := make(map[string]*entity.Warehouse)

		for _, row := range rows {
			p, err := upsertProduct(ctx, repos, products, row, now)
			if err != nil {
				return err
			}
			if p != nil {
				res.Products++
			}
			if row.WarehouseCode == "" {
				continue
			}
			w, created, err := ensureWarehouse(ctx, repos, warehouses, row.WarehouseCode, now)
			if err != nil {
				return err
			}
			if created {
				res.Warehouses++
			}
			err = repos.Stock.Upsert(ctx, &entity.StockRecord{
				ProductID:   products[row.SKU].ID,
				WarehouseID: w.ID,
				Quantity:    row.Quantity,
				UpdatedAt:   now,
				UpdatedBy:   actor,
			})
			if err != nil {
				return err
			}
			res.StockRecords++
		}
		return nil
	})
	return res, err
}

// upsertProduct devuelve el producto si es la primera vez que aparece su SKU en el archivo.
func upsertProduct(ctx context.Context, repos inventory.Repos, seen map[string]*entity.Product, row Row, now time.Time) (*entity.Product, error) {
	if _, ok := seen[row.SKU]; ok {
		return nil, nil
	}
	p, err := repos.Products.GetBySKU(ctx, row.SKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &entity.Product{
			ID:        uuid.New().String(),
			SKU:       row.SKU,
			Name:      row.Name,
			Category:  row.Category,
			Price:     row.Price,
			MinStock:  row.MinStock,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Products.Create(ctx, p); err != nil {
			return nil, err
		}
	} else {
		p.Name, p.Category, p.Price, p.MinStock, p.UpdatedAt = row.Name, row.Category, row.Price, row.MinStock, now
		if err := repos.Products.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	seen[row.SKU] = p
	return p, nil
}

func ensureWarehouse(ctx context.Context, repos inventory.Repos, seen map[string]*entity.Warehouse, code string, now time.Time) (*entity.Warehouse, bool, error) {
	if w, ok := seen[code]; ok {
		return w, false, nil
	}
	w, err := repos.Warehouses.GetByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	created := false
	if w == nil {
		w = &entity.Warehouse{ID: uuid.New().String(), Code: code, Name: "Bodega " + code, Active: true, CreatedAt: now, UpdatedAt: now}
		if err := repos.Warehouses.Create(ctx, w); err != nil {
			return nil, false, err
		}
		created = true
	}
	seen[code] = w
	return w, created, nil
}
