package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func seedItem(t *testing.T, store *memory.Store, id, name string, created time.Time) {
	t.Helper()
	require.NoError(t, store.Items().Create(context.Background(), &entity.Item{
		ID:         id,
		Name:       name,
		SKU:        "SKU-" + id,
		CategoryID: "cat-1",
		SupplierID: "sup-1",
		CreatedAt:  created,
		UpdatedAt:  created,
	}))
}

func TestItemList_OrdenPorNombre(t *testing.T) {
	store := memory.NewStore()
	now := time.Now()
	seedItem(t, store, "i-1", "Tornillo", now)
	seedItem(t, store, "i-2", "Arandela", now.Add(time.Minute))
	seedItem(t, store, "i-3", "Martillo", now.Add(-time.Minute))

	list, err := store.Items().List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Arandela", list[0].Name)
	assert.Equal(t, "Martillo", list[1].Name)
	assert.Equal(t, "Tornillo", list[2].Name)

	page, err := store.Items().List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Martillo", page[0].Name)
}

func TestItemDelete_ConLineasSeRechaza(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedItem(t, store, "i-1", "Tornillo", time.Now())

	txs := store.Transactions()
	require.NoError(t, txs.Create(ctx, &entity.Transaction{
		ID: "t-1", TransactionNo: "IN-1", Type: entity.TransactionTypeIn, Date: time.Now(),
	}))
	require.NoError(t, txs.CreateItem(ctx, &entity.TransactionItem{
		ID: "l-1", TransactionID: "t-1", ItemID: "i-1", Quantity: 3,
	}))

	err := store.Items().Delete(ctx, "i-1")
	var dep *domain.HasDependentsError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, 1, dep.Count)
	assert.ErrorIs(t, err, domain.ErrHasDependents)

	it, err := store.Items().GetByID(ctx, "i-1")
	require.NoError(t, err)
	assert.NotNil(t, it)

	require.NoError(t, txs.DeleteItems(ctx, "t-1"))
	require.NoError(t, store.Items().Delete(ctx, "i-1"))
}

func TestCategoryYProveedorDelete_ConItemsSeRechaza(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{ID: "cat-1", Name: "Ferretería"}))
	require.NoError(t, store.Suppliers().Create(ctx, &entity.Supplier{ID: "sup-1", Name: "Aceros SAS"}))
	seedItem(t, store, "i-1", "Tornillo", time.Now())

	var dep *domain.HasDependentsError
	require.ErrorAs(t, store.Categories().Delete(ctx, "cat-1"), &dep)
	assert.Equal(t, 1, dep.Count)
	require.ErrorAs(t, store.Suppliers().Delete(ctx, "sup-1"), &dep)
	assert.Equal(t, 1, dep.Count)

	require.NoError(t, store.Items().Delete(ctx, "i-1"))
	require.NoError(t, store.Categories().Delete(ctx, "cat-1"))
	require.NoError(t, store.Suppliers().Delete(ctx, "sup-1"))
}

func TestTxRunner_DependenciaDentroDeTransaccion(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedItem(t, store, "i-1", "Tornillo", time.Now())
	require.NoError(t, store.Transactions().Create(ctx, &entity.Transaction{
		ID: "t-1", TransactionNo: "IN-1", Type: entity.TransactionTypeIn, Date: time.Now(),
	}))

	err := store.TxRunner().Run(ctx, func(items repository.ItemRepository, txs repository.TransactionRepository) error {
		if err := txs.CreateItem(ctx, &entity.TransactionItem{
			ID: "l-1", TransactionID: "t-1", ItemID: "i-1", Quantity: 1,
		}); err != nil {
			return err
		}
		return items.Delete(ctx, "i-1")
	})
	require.ErrorIs(t, err, domain.ErrHasDependents)

	n, err := store.Transactions().CountByItem(ctx, "i-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
