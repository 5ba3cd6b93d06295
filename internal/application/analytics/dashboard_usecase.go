// Package analytics contiene los casos de uso del dashboard del back office.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const movementDays = 30 // ventana del gráfico y de los contadores de transacciones

// DashboardUseCase genera las tarjetas de resumen y el gráfico de movimiento.
//
// Fuente de datos: StatsRepository (consultas read-only) más los Count de categorías
// y proveedores.
type DashboardUseCase struct {
	statsRepo    repository.StatsRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	now          func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	statsRepo repository.StatsRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		statsRepo:    statsRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		now:          time.Now,
	}
}

// Stats construye las tarjetas del dashboard.
//
// Cinco consultas en paralelo:
//  1. CountItems
//  2. CountLowStock(stock < 10)
//  3. categorías
//  4. proveedores
//  5. CountTransactions(últimos 30 días)
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	from, to := uc.window()

	type countResult struct {
		n   int
		err error
	}
	type txResult struct {
		c   repository.TransactionCounts
		err error
	}

	itemsCh := make(chan countResult, 1)
	lowCh := make(chan countResult, 1)
	catCh := make(chan countResult, 1)
	supCh := make(chan countResult, 1)
	txCh := make(chan txResult, 1)

	go func() {
		n, err := uc.statsRepo.CountItems(ctx)
		itemsCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.statsRepo.CountLowStock(ctx, entity.LowStockThreshold)
		lowCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.categoryRepo.Count(ctx)
		catCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.supplierRepo.Count(ctx)
		supCh <- countResult{n, err}
	}()
	go func() {
		c, err := uc.statsRepo.CountTransactions(ctx, from, to)
		txCh <- txResult{c, err}
	}()

	items, low, cats, sups, txs := <-itemsCh, <-lowCh, <-catCh, <-supCh, <-txCh

	if items.err != nil {
		return nil, fmt.Errorf("dashboard: ítems: %w", items.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if cats.err != nil {
		return nil, fmt.Errorf("dashboard: categorías: %w", cats.err)
	}
	if sups.err != nil {
		return nil, fmt.Errorf("dashboard: proveedores: %w", sups.err)
	}
	if txs.err != nil {
		return nil, fmt.Errorf("dashboard: transacciones: %w", txs.err)
	}

	return &dto.DashboardStatsDTO{
		TotalItems:      items.n,
		LowStockItems:   low.n,
		TotalCategories: cats.n,
		TotalSuppliers:  sups.n,
		Transactions30d: txs.c.Total,
		Incoming30d:     txs.c.Incoming,
		Outgoing30d:     txs.c.Outgoing,
	}, nil
}

// Movement devuelve un punto por día de los últimos 30 días (hoy incluido).
// Los días sin transacciones salen en 0.
func (uc *DashboardUseCase) Movement(ctx context.Context) (*dto.MovementChartDTO, error) {
	from, to := uc.window()
	rows, err := uc.statsRepo.DailyMovements(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("dashboard: movimiento: %w", err)
	}
	byDay := make(map[string]repository.DailyMovement, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format(time.DateOnly)] = r
	}

	points := make([]dto.MovementPointDTO, 0, movementDays)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		r := byDay[key]
		points = append(points, dto.MovementPointDTO{Date: key, Incoming: r.Incoming, Outgoing: r.Outgoing})
	}
	return &dto.MovementChartDTO{
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Points: points,
	}, nil
}

// window [hoy-29 00:00, hoy 23:59:59] en UTC; las fechas de transacción son días calendario.
func (uc *DashboardUseCase) window() (from, to time.Time) {
	now := uc.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from = today.AddDate(0, 0, -(movementDays - 1))
	to = today.Add(24*time.Hour - time.Nanosecond)
	return from, to
}
