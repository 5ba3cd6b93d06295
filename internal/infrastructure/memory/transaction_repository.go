package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo transacciones y líneas en memoria.
type TransactionRepo struct {
	s    *Store
	held bool
}

func (r *TransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	return r.s.do(r.held, func(st *state) error {
		for _, other := range st.transactions {
			if other.TransactionNo == t.TransactionNo {
				return &domain.DuplicateError{Field: "transaction_no"}
			}
		}
		cp := *t
		cp.Items = nil
		st.transactions[t.ID] = &cp
		return nil
	})
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.s.do(r.held, func(st *state) error {
		out = st.load(id)
		return nil
	})
	return out, err
}

func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) GetByNo(_ context.Context, transactionNo string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.s.do(r.held, func(st *state) error {
		for id, t := range st.transactions {
			if t.TransactionNo == transactionNo {
				out = st.load(id)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) Update(_ context.Context, t *entity.Transaction) error {
	return r.s.do(r.held, func(st *state) error {
		cur, ok := st.transactions[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.transactions {
			if other.ID != t.ID && other.TransactionNo == t.TransactionNo {
				return &domain.DuplicateError{Field: "transaction_no"}
			}
		}
		cur.TransactionNo = t.TransactionNo
		cur.Date = t.Date
		cur.Notes = t.Notes
		cur.UpdatedAt = t.UpdatedAt
		return nil
	})
}

func (r *TransactionRepo) Delete(_ context.Context, id string) error {
	return r.s.do(r.held, func(st *state) error {
		delete(st.transactions, id)
		delete(st.lines, id)
		return nil
	})
}

func (r *TransactionRepo) List(_ context.Context, limit, offset int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	err := r.s.do(r.held, func(st *state) error {
		out = paginate(st.sortedTransactions(), limit, offset)
		return nil
	})
	return out, err
}

func (r *TransactionRepo) Latest(_ context.Context, limit int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	err := r.s.do(r.held, func(st *state) error {
		out = paginate(st.sortedTransactions(), limit, 0)
		return nil
	})
	return out, err
}

func (r *TransactionRepo) CreateItem(_ context.Context, line *entity.TransactionItem) error {
	return r.s.do(r.held, func(st *state) error {
		if _, ok := st.transactions[line.TransactionID]; !ok {
			return domain.ErrNotFound
		}
		cp := *line
		cp.ItemName = ""
		st.lines[line.TransactionID] = append(st.lines[line.TransactionID], &cp)
		return nil
	})
}

func (r *TransactionRepo) UpdateItem(_ context.Context, line *entity.TransactionItem) error {
	return r.s.do(r.held, func(st *state) error {
		for _, l := range st.lines[line.TransactionID] {
			if l.ID == line.ID {
				l.ItemID = line.ItemID
				l.Quantity = line.Quantity
				l.Price = line.Price
				l.UpdatedAt = line.UpdatedAt
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *TransactionRepo) DeleteItem(_ context.Context, lineID string) error {
	return r.s.do(r.held, func(st *state) error {
		for txID, ls := range st.lines {
			for i, l := range ls {
				if l.ID == lineID {
					st.lines[txID] = append(ls[:i:i], ls[i+1:]...)
					return nil
				}
			}
		}
		return nil
	})
}

func (r *TransactionRepo) DeleteItems(_ context.Context, transactionID string) error {
	return r.s.do(r.held, func(st *state) error {
		delete(st.lines, transactionID)
		return nil
	})
}

func (r *TransactionRepo) CountByItem(_ context.Context, itemID string) (int, error) {
	var n int
	err := r.s.do(r.held, func(st *state) error {
		for _, ls := range st.lines {
			for _, l := range ls {
				if l.ItemID == itemID {
					n++
				}
			}
		}
		return nil
	})
	return n, err
}

// load arma una copia de la cabecera con sus líneas y nombres de ítem.
func (st *state) load(id string) *entity.Transaction {
	t, ok := st.transactions[id]
	if !ok {
		return nil
	}
	cp := *t
	cp.Items = make([]entity.TransactionItem, 0, len(st.lines[id]))
	for _, l := range st.lines[id] {
		li := *l
		if it, ok := st.items[l.ItemID]; ok {
			li.ItemName = it.Name
		}
		cp.Items = append(cp.Items, li)
	}
	return &cp
}

func (st *state) sortedTransactions() []*entity.Transaction {
	all := make([]*entity.Transaction, 0, len(st.transactions))
	for id := range st.transactions {
		all = append(all, st.load(id))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].ID > all[j].ID
			}
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Date.After(all[j].Date)
	})
	return all
}
