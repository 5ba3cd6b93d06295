package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo cabeceras (transactions) y líneas (transaction_items) sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const (
	transactionColumns = `id, transaction_no, date, type, notes, COALESCE(created_by::TEXT, ''), created_at, updated_at`
	transactionOrder   = `ORDER BY date DESC, created_at DESC, id DESC`
)

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	if err := row.Scan(&t.ID, &t.TransactionNo, &t.Date, &t.Type, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO transactions (id, transaction_no, date, type, notes, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::UUID, $7, $8)`,
		t.ID, t.TransactionNo, t.Date, t.Type, t.Notes, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateError(err, "transaction_no")
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: dos ediciones de la misma transacción se serializan.
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepo) GetByNo(ctx context.Context, transactionNo string) (*entity.Transaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_no = $1`, transactionNo)
}

func (r *TransactionRepo) getOne(ctx context.Context, query string, arg any) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Update actualiza la cabecera. type no se toca.
func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.Exec(ctx,
		`UPDATE transactions SET transaction_no = $2, date = $3, notes = $4, updated_at = $5 WHERE id = $1`,
		t.ID, t.TransactionNo, t.Date, t.Notes, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateError(err, "transaction_no")
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete borra la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions `+transactionOrder+` LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *TransactionRepo) Latest(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions `+transactionOrder+` LIMIT $1`, limit)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadLines carga en una sola consulta las líneas de las transacciones dadas, con el nombre del ítem.
func (r *TransactionRepo) loadLines(ctx context.Context, txs []*entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ids := make([]string, len(txs))
	byID := make(map[string]*entity.Transaction, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
		byID[t.ID] = t
		t.Items = []entity.TransactionItem{}
	}

	rows, err := r.q.Query(ctx, `
		SELECT ti.id, ti.transaction_id, ti.item_id, i.name, ti.quantity, ti.price, ti.created_at, ti.updated_at
		FROM transaction_items ti
		JOIN items i ON i.id = ti.item_id
		WHERE ti.transaction_id = ANY($1::UUID[])
		ORDER BY ti.created_at, ti.id`, ids)
	if err != nil {
		return fmt.Errorf("load transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.TransactionItem
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ItemID, &l.ItemName, &l.Quantity, &l.Price, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		t := byID[l.TransactionID]
		t.Items = append(t.Items, l)
	}
	return rows.Err()
}

func (r *TransactionRepo) CreateItem(ctx context.Context, l *entity.TransactionItem) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO transaction_items (id, transaction_id, item_id, quantity, price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.TransactionID, l.ItemID, l.Quantity, l.Price, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction item: %w", err)
	}
	return nil
}

func (r *TransactionRepo) UpdateItem(ctx context.Context, l *entity.TransactionItem) error {
	_, err := r.q.Exec(ctx,
		`UPDATE transaction_items SET item_id = $2, quantity = $3, price = $4, updated_at = $5 WHERE id = $1`,
		l.ID, l.ItemID, l.Quantity, l.Price, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction item: %w", err)
	}
	return nil
}

func (r *TransactionRepo) DeleteItem(ctx context.Context, lineID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transaction_items WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("delete transaction item: %w", err)
	}
	return nil
}

func (r *TransactionRepo) DeleteItems(ctx context.Context, transactionID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transaction_items WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("delete transaction items: %w", err)
	}
	return nil
}

func (r *TransactionRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	if !validID(itemID) {
		return 0, nil
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_items WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transaction items: %w", err)
	}
	return n, nil
}
