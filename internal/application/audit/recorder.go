// Package audit registra la actividad del back office (quién hizo qué sobre qué recurso).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Acciones registradas.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionStockChanged = "stock_changed"
	ActionLogin        = "login"
	ActionLogout       = "logout"
)

var _ ports.ActivityRecorder = (*Recorder)(nil)

// Recorder persiste entradas de actividad. Una falla de escritura se loguea y se descarta.
type Recorder struct {
	repo repository.ActivityRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.ActivityRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record agrega una entrada. Se desacopla de la cancelación del request para no perder
// el registro cuando el cliente corta la conexión tras un commit exitoso.
func (r *Recorder) Record(ctx context.Context, actor entity.Actor, action, subjectType, subjectID, description string) {
	a := &entity.Activity{
		ID:          uuid.New().String(),
		CauserID:    actor.UserID,
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Description: description,
		CreatedAt:   r.now(),
	}
	if err := r.repo.Append(context.WithoutCancel(ctx), a); err != nil {
		r.log.Error().Err(err).
			Str("action", action).
			Str("subject_type", subjectType).
			Str("subject_id", subjectID).
			Msg("no se pudo registrar actividad")
		return
	}
	r.log.Debug().
		Str("causer", actor.UserID).
		Str("action", action).
		Str("subject_type", subjectType).
		Str("subject_id", subjectID).
		Msg(description)
}
