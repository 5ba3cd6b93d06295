package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s    *Store
	held bool
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.s.do(r.held, func(st *state) error {
		for _, other := range st.categories {
			if other.Name == c.Name {
				return &domain.DuplicateError{Field: "name"}
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.do(r.held, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.do(r.held, func(st *state) error {
		for _, c := range st.categories {
			if c.Name == name {
				cp := *c
				out = &cp
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.s.do(r.held, func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.categories {
			if other.ID != c.ID && other.Name == c.Name {
				return &domain.DuplicateError{Field: "name"}
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.do(r.held, func(st *state) error {
		all := make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			cp := *c
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.do(r.held, func(st *state) error {
		n = len(st.categories)
		return nil
	})
	return n, err
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.s.do(r.held, func(st *state) error {
		n := 0
		for _, it := range st.items {
			if it.CategoryID == id {
				n++
			}
		}
		if n > 0 {
			return &domain.HasDependentsError{Resource: "la categoría", Dependent: "ítems", Count: n}
		}
		delete(st.categories, id)
		return nil
	})
}
