package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const inventoryItemColumns = `id, org_id, name, sku, stock_level, reorder_level, unit, unit_price, is_active, created_at, updated_at`

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := row.Scan(
		&i.ID, &i.OrgID, &i.Name, &i.SKU, &i.StockLevel, &i.ReorderLevel,
		&i.Unit, &i.UnitPrice, &i.IsActive, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create persiste un nuevo artículo de inventario.
func (r *InventoryItemRepo) Create(item *entity.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_items (` + inventoryItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrgID, item.Name, item.SKU, item.StockLevel, item.ReorderLevel,
		item.Unit, item.UnitPrice, item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID dentro de la organización. Nil si no existe.
func (r *InventoryItemRepo) GetByID(id, orgID string) (*entity.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items WHERE id = $1 AND org_id = $2`
	item, err := scanInventoryItem(r.q.QueryRow(context.Background(), query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// GetForUpdate obtiene el artículo y bloquea su fila (SELECT FOR UPDATE). Nil si no existe.
func (r *InventoryItemRepo) GetForUpdate(id, orgID string) (*entity.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items WHERE id = $1 AND org_id = $2
		FOR UPDATE`
	item, err := scanInventoryItem(r.q.QueryRow(context.Background(), query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item for update: %w", err)
	}
	return item, nil
}

// ListForUpdate obtiene y bloquea todos los artículos del set en una sola
// consulta. ORDER BY id fija el orden de adquisición de locks para evitar
// deadlocks entre deducciones concurrentes con sets solapados.
func (r *InventoryItemRepo) ListForUpdate(ids []string, orgID string) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items WHERE id = ANY($1) AND org_id = $2
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, ids, orgID)
	if err != nil {
		return nil, fmt.Errorf("list inventory items for update: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		var i entity.InventoryItem
		if err := rows.Scan(
			&i.ID, &i.OrgID, &i.Name, &i.SKU, &i.StockLevel, &i.ReorderLevel,
			&i.Unit, &i.UnitPrice, &i.IsActive, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// UpdateStockLevel escribe el nuevo nivel de stock. Solo la llama el motor de
// inventario dentro de la transacción que tomó el lock de la fila.
func (r *InventoryItemRepo) UpdateStockLevel(id string, level decimal.Decimal) error {
	query := `UPDATE inventory_items SET stock_level = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, level)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	return nil
}

// Update actualiza los campos editables del artículo (no el stock: ese pasa por el ledger).
func (r *InventoryItemRepo) Update(item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $3, sku = $4, reorder_level = $5, unit = $6, unit_price = $7, is_active = $8, updated_at = now()
		WHERE id = $1 AND org_id = $2`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrgID, item.Name, item.SKU, item.ReorderLevel,
		item.Unit, item.UnitPrice, item.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

// ListByOrg lista los artículos de la organización.
func (r *InventoryItemRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + inventoryItemColumns + `
		FROM inventory_items WHERE org_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		var i entity.InventoryItem
		if err := rows.Scan(
			&i.ID, &i.OrgID, &i.Name, &i.SKU, &i.StockLevel, &i.ReorderLevel,
			&i.Unit, &i.UnitPrice, &i.IsActive, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}
