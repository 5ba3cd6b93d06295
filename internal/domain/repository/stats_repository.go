package repository

import (
	"context"
	"time"
)

// TransactionCounts conteo de transacciones en un período.
type TransactionCounts struct {
	Total    int
	Incoming int
	Outgoing int
}

// DailyMovement cantidades movidas en un día.
type DailyMovement struct {
	Day      time.Time
	Incoming int
	Outgoing int
}

// StatsRepository consultas read-only para el dashboard.
type StatsRepository interface {
	CountItems(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context, threshold int) (int, error)
	CountTransactions(ctx context.Context, from, to time.Time) (TransactionCounts, error)
	// DailyMovements suma de cantidades por día y tipo en [from, to]. Solo días con movimiento.
	DailyMovements(ctx context.Context, from, to time.Time) ([]DailyMovement, error)
}
