package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ActivityRepository registro append-only de actividad.
type ActivityRepository interface {
	Append(ctx context.Context, a *entity.Activity) error
	ListBySubject(ctx context.Context, subjectType, subjectID string, limit int) ([]*entity.Activity, error)
}
