package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, *entity.Activity) error { return errors.New("db caída") }
func (failingRepo) ListBySubject(context.Context, string, string, int) ([]*entity.Activity, error) {
	return nil, nil
}

func TestRecorder_PersisteEntrada(t *testing.T) {
	store := memory.NewStore()
	rec := audit.NewRecorder(store.Activities(), logger.Nop())
	actor := entity.Actor{UserID: "u-1", Role: entity.RoleAdmin}

	rec.Record(context.Background(), actor, audit.ActionCreated, "item", "it-1", "Created item")

	list, err := store.Activities().ListBySubject(context.Background(), "item", "it-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u-1", list[0].CauserID)
	assert.Equal(t, audit.ActionCreated, list[0].Action)
	assert.Equal(t, "Created item", list[0].Description)
}

func TestRecorder_FallaNoPropaga(t *testing.T) {
	rec := audit.NewRecorder(failingRepo{}, logger.Nop())
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), entity.Actor{}, audit.ActionDeleted, "item", "x", "Deleted item")
	})
}

func TestRecorder_ContextoCanceladoIgualRegistra(t *testing.T) {
	store := memory.NewStore()
	rec := audit.NewRecorder(store.Activities(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, entity.Actor{UserID: "u-2"}, audit.ActionUpdated, "transaction", "t-1", "Updated transaction")

	list, err := store.Activities().ListBySubject(context.Background(), "transaction", "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
