package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// storage repositorios del backend elegido con STORAGE_DRIVER.
type storage struct {
	categories   repository.CategoryRepository
	suppliers    repository.SupplierRepository
	items        repository.ItemRepository
	transactions repository.TransactionRepository
	users        repository.UserRepository
	activities   repository.ActivityRepository
	stats        repository.StatsRepository
	txRunner     inventory.TxRunner
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, codec fieldcrypt.Codec, log *logger.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			categories:   store.Categories(),
			suppliers:    store.Suppliers(),
			items:        store.Items(),
			transactions: store.Transactions(),
			users:        store.Users(),
			activities:   store.Activities(),
			stats:        store.Stats(),
			txRunner:     store.TxRunner(),
			close:        func() {},
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		return &storage{
			categories:   postgres.NewCategoryRepository(pool),
			suppliers:    postgres.NewSupplierRepository(pool, codec),
			items:        postgres.NewItemRepository(pool),
			transactions: postgres.NewTransactionRepository(pool),
			users:        postgres.NewUserRepository(pool),
			activities:   postgres.NewActivityRepository(pool),
			stats:        postgres.NewStatsRepository(pool),
			txRunner:     postgres.NewTxRunner(pool),
			close:        pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage.Driver)
}
