package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, number, type, source_warehouse_id, destination_warehouse_id, reason, notes, created_at, created_by`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste cabecera y líneas del movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Number, m.Type.String(), nullIfEmpty(m.SourceWarehouseID), nullIfEmpty(m.DestinationWarehouseID),
		m.Reason, m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de movimiento %s", domain.ErrDuplicate, m.Number)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	for i, l := range m.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_movement_lines (id, movement_id, position, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, m.ID, i, l.ProductID, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("create stock movement line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, movement_id, product_id, quantity, unit_price
		FROM stock_movement_lines WHERE movement_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.StockMovementLine
		var price *decimal.Decimal
		if err := rows.Scan(&l.ID, &l.MovementID, &l.ProductID, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		l.UnitPrice = price
		m.Lines = append(m.Lines, l)
	}
	return m, rows.Err()
}

// NumberExists indica si el consecutivo ya fue usado.
func (r *StockMovementRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE number = $1)`, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("movement number exists: %w", err)
	}
	return exists, nil
}

// List cabeceras (sin líneas), más recientes primero. WarehouseID filtra por origen o destino.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE true`
	var args []any
	pos := 1
	if filter.Type != entity.MovementTypeUnknown {
		query += ` AND type = $` + strconv.Itoa(pos)
		args = append(args, filter.Type.String())
		pos++
	}
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(` AND (source_warehouse_id = $%d OR destination_warehouse_id = $%d)`, pos, pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, limitArg(filter.Limit), filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	var source, destination *string
	err := row.Scan(&m.ID, &m.Number, &typ, &source, &destination, &m.Reason, &m.Notes, &m.CreatedAt, &m.CreatedBy)
	if err != nil {
		return nil, err
	}
	if m.Type, err = entity.ParseMovementType(typ); err != nil {
		return nil, err
	}
	m.SourceWarehouseID = deref(source)
	m.DestinationWarehouseID = deref(destination)
	return &m, nil
}
