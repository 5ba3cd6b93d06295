package memory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo registro de actividad en memoria.
type ActivityRepo struct {
	s *Store
}

func (r *ActivityRepo) Append(_ context.Context, a *entity.Activity) error {
	return r.s.do(false, func(st *state) error {
		cp := *a
		st.activities = append(st.activities, &cp)
		return nil
	})
}

// ListBySubject devuelve las entradas más recientes primero. subjectID vacío no filtra por ID.
func (r *ActivityRepo) ListBySubject(_ context.Context, subjectType, subjectID string, limit int) ([]*entity.Activity, error) {
	var out []*entity.Activity
	err := r.s.do(false, func(st *state) error {
		for i := len(st.activities) - 1; i >= 0; i-- {
			a := st.activities[i]
			if subjectType != "" && a.SubjectType != subjectType {
				continue
			}
			if subjectID != "" && a.SubjectID != subjectID {
				continue
			}
			cp := *a
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
