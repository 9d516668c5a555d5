package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const stockMovementColumns = `id, org_id, inventory_item_id, type, quantity, previous_level, new_level, unit_price, reference_type, reference_id, created_by_id, created_by_type, reason, notes, created_at`

// StockMovementRepo implementación append-only de StockMovementRepository
// sobre PostgreSQL: solo INSERT y SELECT, nunca UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + stockMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.OrgID, movement.InventoryItemID, movement.Type,
		movement.Quantity, movement.PreviousLevel, movement.NewLevel, movement.UnitPrice,
		movement.ReferenceType, movement.ReferenceID,
		movement.CreatedByID, movement.CreatedByType,
		movement.Reason, movement.Notes, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

func scanMovement(rows pgx.Rows) (*entity.StockMovement, error) {
	var m entity.StockMovement
	if err := rows.Scan(
		&m.ID, &m.OrgID, &m.InventoryItemID, &m.Type,
		&m.Quantity, &m.PreviousLevel, &m.NewLevel, &m.UnitPrice,
		&m.ReferenceType, &m.ReferenceID,
		&m.CreatedByID, &m.CreatedByType,
		&m.Reason, &m.Notes, &m.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan stock movement: %w", err)
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id, orgID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements WHERE id = $1 AND org_id = $2`
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id, orgID).Scan(
		&m.ID, &m.OrgID, &m.InventoryItemID, &m.Type,
		&m.Quantity, &m.PreviousLevel, &m.NewLevel, &m.UnitPrice,
		&m.ReferenceType, &m.ReferenceID,
		&m.CreatedByID, &m.CreatedByType,
		&m.Reason, &m.Notes, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return &m, nil
}

// ListByItem lista movimientos de un artículo en un rango de fechas.
func (r *StockMovementRepo) ListByItem(itemID, orgID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements WHERE inventory_item_id = $1 AND org_id = $2`
	args := []any{itemID, orgID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListByReference lista los movimientos de una referencia (ej. todos los de una factura).
func (r *StockMovementRepo) ListByReference(referenceType, referenceID, orgID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2 AND org_id = $3
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, referenceType, referenceID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
