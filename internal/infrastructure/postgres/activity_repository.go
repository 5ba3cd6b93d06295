package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo bitácora append-only en activity_log.
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador.
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

func (r *ActivityRepo) Append(ctx context.Context, a *entity.Activity) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO activity_log (id, causer_id, action, subject_type, subject_id, description, created_at)
		 VALUES ($1, NULLIF($2, '')::UUID, $3, $4, $5, $6, $7)`,
		a.ID, a.CauserID, a.Action, a.SubjectType, a.SubjectID, a.Description, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListBySubject devuelve las entradas más recientes primero. Filtros vacíos no filtran.
func (r *ActivityRepo) ListBySubject(ctx context.Context, subjectType, subjectID string, limit int) ([]*entity.Activity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, COALESCE(causer_id::TEXT, ''), action, subject_type, subject_id, description, created_at
		FROM activity_log
		WHERE ($1 = '' OR subject_type = $1) AND ($2 = '' OR subject_id = $2)
		ORDER BY created_at DESC
		LIMIT $3`, subjectType, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var list []*entity.Activity
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.CauserID, &a.Action, &a.SubjectType, &a.SubjectID, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
