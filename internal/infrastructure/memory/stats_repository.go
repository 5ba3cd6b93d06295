package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo consultas del dashboard sobre el estado en memoria.
type StatsRepo struct {
	s *Store
}

func (r *StatsRepo) CountItems(_ context.Context) (int, error) {
	var n int
	err := r.s.do(false, func(st *state) error {
		n = len(st.items)
		return nil
	})
	return n, err
}

func (r *StatsRepo) CountLowStock(_ context.Context, threshold int) (int, error) {
	var n int
	err := r.s.do(false, func(st *state) error {
		for _, it := range st.items {
			if it.Stock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *StatsRepo) CountTransactions(_ context.Context, from, to time.Time) (repository.TransactionCounts, error) {
	var c repository.TransactionCounts
	err := r.s.do(false, func(st *state) error {
		for _, t := range st.transactions {
			if t.Date.Before(from) || t.Date.After(to) {
				continue
			}
			c.Total++
			if t.Type == entity.TransactionTypeIn {
				c.Incoming++
			} else {
				c.Outgoing++
			}
		}
		return nil
	})
	return c, err
}

func (r *StatsRepo) DailyMovements(_ context.Context, from, to time.Time) ([]repository.DailyMovement, error) {
	var out []repository.DailyMovement
	err := r.s.do(false, func(st *state) error {
		byDay := make(map[string]*repository.DailyMovement)
		for id, t := range st.transactions {
			if t.Date.Before(from) || t.Date.After(to) {
				continue
			}
			day := time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, time.UTC)
			key := day.Format("2006-01-02")
			dm, ok := byDay[key]
			if !ok {
				dm = &repository.DailyMovement{Day: day}
				byDay[key] = dm
			}
			for _, l := range st.lines[id] {
				if t.Type == entity.TransactionTypeIn {
					dm.Incoming += l.Quantity
				} else {
					dm.Outgoing += l.Quantity
				}
			}
		}
		for _, dm := range byDay {
			out = append(out, *dm)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
		return nil
	})
	return out, err
}
