package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para Transaction y sus líneas.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	// GetByID devuelve la cabecera con sus líneas cargadas.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate igual que GetByID pero bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	GetByNo(ctx context.Context, transactionNo string) (*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error)
	Latest(ctx context.Context, limit int) ([]*entity.Transaction, error)

	CreateItem(ctx context.Context, line *entity.TransactionItem) error
	UpdateItem(ctx context.Context, line *entity.TransactionItem) error
	DeleteItem(ctx context.Context, lineID string) error
	DeleteItems(ctx context.Context, transactionID string) error
	// CountByItem número de líneas que referencian el ítem.
	CountByItem(ctx context.Context, itemID string) (int, error)
}
