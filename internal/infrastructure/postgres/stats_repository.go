package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo consultas de solo lectura para el dashboard.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

func (r *StatsRepo) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *StatsRepo) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE stock < $1`, threshold).Scan(&n); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

func (r *StatsRepo) CountTransactions(ctx context.Context, from, to time.Time) (repository.TransactionCounts, error) {
	var c repository.TransactionCounts
	err := r.q.QueryRow(ctx, `
		SELECT
		    COUNT(*),
		    COUNT(*) FILTER (WHERE type = 'in'),
		    COUNT(*) FILTER (WHERE type = 'out')
		FROM transactions
		WHERE date BETWEEN $1::DATE AND $2::DATE`, from, to,
	).Scan(&c.Total, &c.Incoming, &c.Outgoing)
	if err != nil {
		return c, fmt.Errorf("count transactions: %w", err)
	}
	return c, nil
}

// DailyMovements suma cantidades por día y tipo. Solo devuelve días con movimiento;
// el relleno con ceros lo hace el caso de uso.
func (r *StatsRepo) DailyMovements(ctx context.Context, from, to time.Time) ([]repository.DailyMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT
		    t.date,
		    COALESCE(SUM(ti.quantity) FILTER (WHERE t.type = 'in'), 0),
		    COALESCE(SUM(ti.quantity) FILTER (WHERE t.type = 'out'), 0)
		FROM transactions t
		JOIN transaction_items ti ON ti.transaction_id = t.id
		WHERE t.date BETWEEN $1::DATE AND $2::DATE
		GROUP BY t.date
		ORDER BY t.date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily movements: %w", err)
	}
	defer rows.Close()

	var out []repository.DailyMovement
	for rows.Next() {
		var d repository.DailyMovement
		if err := rows.Scan(&d.Day, &d.Incoming, &d.Outgoing); err != nil {
			return nil, fmt.Errorf("scan daily movement: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
