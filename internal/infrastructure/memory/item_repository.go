package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo ítems en memoria.
type ItemRepo struct {
	s    *Store
	held bool
}

func (r *ItemRepo) Create(_ context.Context, it *entity.Item) error {
	return r.s.do(r.held, func(st *state) error {
		for _, other := range st.items {
			if other.SKU == it.SKU {
				return &domain.DuplicateError{Field: "sku"}
			}
		}
		cp := *it
		st.items[it.ID] = &cp
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.do(r.held, func(st *state) error {
		if it, ok := st.items[id]; ok {
			cp := *it
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.do(r.held, func(st *state) error {
		for _, it := range st.items {
			if it.SKU == sku {
				cp := *it
				out = &cp
				break
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el bloqueo ya lo da el mutex de TxRunner.Run.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, it *entity.Item) error {
	return r.s.do(r.held, func(st *state) error {
		cur, ok := st.items[it.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.items {
			if other.ID != it.ID && other.SKU == it.SKU {
				return &domain.DuplicateError{Field: "sku"}
			}
		}
		cp := *it
		cp.Stock = cur.Stock
		st.items[it.ID] = &cp
		return nil
	})
}

func (r *ItemRepo) UpdateStock(_ context.Context, id string, stock int) error {
	return r.s.do(r.held, func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		it.Stock = stock
		it.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.s.do(r.held, func(st *state) error {
		all := make([]*entity.Item, 0, len(st.items))
		for _, it := range st.items {
			cp := *it
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].Name == all[j].Name {
				return all[i].ID < all[j].ID
			}
			return all[i].Name < all[j].Name
		})
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *ItemRepo) ListLowStock(_ context.Context, threshold, limit int) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.s.do(r.held, func(st *state) error {
		all := make([]*entity.Item, 0)
		for _, it := range st.items {
			if it.Stock < threshold {
				cp := *it
				all = append(all, &cp)
			}
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].Stock == all[j].Stock {
				return all[i].Name < all[j].Name
			}
			return all[i].Stock < all[j].Stock
		})
		out = paginate(all, limit, 0)
		return nil
	})
	return out, err
}

func (r *ItemRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	var n int
	err := r.s.do(r.held, func(st *state) error {
		for _, it := range st.items {
			if it.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ItemRepo) CountBySupplier(_ context.Context, supplierID string) (int, error) {
	var n int
	err := r.s.do(r.held, func(st *state) error {
		for _, it := range st.items {
			if it.SupplierID == supplierID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ItemRepo) Delete(_ context.Context, id string) error {
	return r.s.do(r.held, func(st *state) error {
		n := 0
		for _, ls := range st.lines {
			for _, l := range ls {
				if l.ItemID == id {
					n++
				}
			}
		}
		if n > 0 {
			return &domain.HasDependentsError{Resource: "el ítem", Dependent: "líneas de transacción", Count: n}
		}
		delete(st.items, id)
		return nil
	})
}
