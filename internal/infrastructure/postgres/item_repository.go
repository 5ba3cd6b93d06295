package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, name, description, sku, price, stock, category_id, supplier_id, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.SKU, &it.Price, &it.Stock,
		&it.CategoryID, &it.SupplierID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.ID, it.Name, it.Description, it.SKU, it.Price, it.Stock,
		it.CategoryID, it.SupplierID, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateError(err, "sku")
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1`, sku)
}

// GetForUpdate bloquea la fila; solo tiene efecto dentro de TxRunner.Run.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) getOne(ctx context.Context, query string, arg any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Update actualiza datos maestros. No modifica stock (se maneja vía transacciones).
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	_, err := r.q.Exec(ctx,
		`UPDATE items SET name = $2, description = $3, sku = $4, price = $5, category_id = $6, supplier_id = $7, updated_at = $8
		 WHERE id = $1`,
		it.ID, it.Name, it.Description, it.SKU, it.Price, it.CategoryID, it.SupplierID, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateError(err, "sku")
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateStock escribe el stock ya calculado por AdjustStock.
func (r *ItemRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	_, err := r.q.Exec(ctx, `UPDATE items SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	return nil
}

func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ItemRepo) ListLowStock(ctx context.Context, threshold, limit int) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE stock < $1 ORDER BY stock, name LIMIT $2`, threshold, limit)
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *ItemRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	if !validID(categoryID) {
		return 0, nil
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE category_id = $1`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items by category: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) CountBySupplier(ctx context.Context, supplierID string) (int, error) {
	if !validID(supplierID) {
		return 0, nil
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE supplier_id = $1`, supplierID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items by supplier: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.HasDependentsError{Resource: "el ítem", Dependent: "líneas de transacción"}
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
