package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const lowStockListLimit = 10

// LowStockUseCase lista los ítems con stock por debajo del umbral, los más críticos primero.
type LowStockUseCase struct {
	itemRepo repository.ItemRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(itemRepo repository.ItemRepository) *LowStockUseCase {
	return &LowStockUseCase{itemRepo: itemRepo}
}

// List devuelve hasta 10 ítems con stock < 10 ordenados por stock ascendente.
func (uc *LowStockUseCase) List(ctx context.Context) ([]dto.ItemResponse, error) {
	items, err := uc.itemRepo.ListLowStock(ctx, entity.LowStockThreshold, lowStockListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			SKU:         it.SKU,
			Price:       it.Price,
			Stock:       it.Stock,
			LowStock:    true,
			CategoryID:  it.CategoryID,
			SupplierID:  it.SupplierID,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return out, nil
}
