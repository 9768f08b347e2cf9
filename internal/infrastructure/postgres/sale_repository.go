package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, number, date, seller_id, client_id, total, notes, created_at, created_by, updated_at, updated_by`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera y líneas. Debe ejecutarse dentro de una tx para que sea atómico.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.Number, sale.Date, sale.SellerID, sale.ClientID, sale.Total, sale.Notes,
		sale.CreatedAt, sale.CreatedBy, sale.UpdatedAt, sale.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de venta %s", domain.ErrDuplicate, sale.Number)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i, l := range sale.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (id, sale_id, position, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, sale.ID, i, l.ProductID, l.Quantity, l.UnitPrice, l.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, line_total
		FROM sale_lines WHERE sale_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	return s, rows.Err()
}

// NumberExists indica si el consecutivo ya fue usado.
func (r *SaleRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE number = $1)`, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("sale number exists: %w", err)
	}
	return exists, nil
}

// List cabeceras (sin líneas), más recientes primero.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, number DESC LIMIT $1 OFFSET $2`,
		limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpdateNotes único campo modificable de una venta registrada.
func (r *SaleRepo) UpdateNotes(ctx context.Context, id, notes, actorID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET notes = $2, updated_at = $3, updated_by = $4 WHERE id = $1`, id, notes, at, actorID)
	if err != nil {
		return fmt.Errorf("update sale notes: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.Number, &s.Date, &s.SellerID, &s.ClientID, &s.Total, &s.Notes,
		&s.CreatedAt, &s.CreatedBy, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
