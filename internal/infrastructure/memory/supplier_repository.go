package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores en memoria (sin cifrado: el estado nunca sale del proceso).
type SupplierRepo struct {
	s    *Store
	held bool
}

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	return r.s.do(r.held, func(st *state) error {
		cp := *sp
		st.suppliers[sp.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.s.do(r.held, func(st *state) error {
		if sp, ok := st.suppliers[id]; ok {
			cp := *sp
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Update(_ context.Context, sp *entity.Supplier) error {
	return r.s.do(r.held, func(st *state) error {
		if _, ok := st.suppliers[sp.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *sp
		st.suppliers[sp.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.s.do(r.held, func(st *state) error {
		all := make([]*entity.Supplier, 0, len(st.suppliers))
		for _, sp := range st.suppliers {
			cp := *sp
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.do(r.held, func(st *state) error {
		n = len(st.suppliers)
		return nil
	})
	return n, err
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	return r.s.do(r.held, func(st *state) error {
		n := 0
		for _, it := range st.items {
			if it.SupplierID == id {
				n++
			}
		}
		if n > 0 {
			return &domain.HasDependentsError{Resource: "el proveedor", Dependent: "ítems", Count: n}
		}
		delete(st.suppliers, id)
		return nil
	})
}
