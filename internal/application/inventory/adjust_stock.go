package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/domain/stock"
)

// Adjustment resultado de un ajuste de stock aplicado.
type Adjustment struct {
	ItemID   string
	ItemName string
	Before   int
	After    int
	Delta    int
	Mode     stock.Mode
	Clamped  bool
}

// AdjustStock es el único punto que escribe items.stock.
// Bloquea la fila (GetForUpdate), aplica la política según mode y persiste el nuevo valor.
// Debe llamarse con un itemRepo atado a la transacción en curso.
func AdjustStock(ctx context.Context, itemRepo repository.ItemRepository, itemID string, delta int, mode stock.Mode) (*Adjustment, error) {
	item, err := itemRepo.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	res, err := stock.Apply(item.Stock, delta, mode)
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			ise.ItemID = item.ID
			ise.ItemName = item.Name
		}
		return nil, err
	}
	if res.After != res.Before {
		if err := itemRepo.UpdateStock(ctx, item.ID, res.After); err != nil {
			return nil, err
		}
	}
	return &Adjustment{
		ItemID:   item.ID,
		ItemName: item.Name,
		Before:   res.Before,
		After:    res.After,
		Delta:    delta,
		Mode:     mode,
		Clamped:  res.Clamped,
	}, nil
}

// LockItems bloquea los ítems indicados en orden ascendente de ID (evita deadlocks entre
// transacciones concurrentes) y los devuelve indexados por ID. Un ID inexistente se reporta
// como ValidationError sobre field.
func LockItems(ctx context.Context, itemRepo repository.ItemRepository, ids []string, field string) (map[string]*entity.Item, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)

	locked := make(map[string]*entity.Item, len(uniq))
	verr := &domain.ValidationError{}
	for _, id := range uniq {
		item, err := itemRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			verr.Add(field, "el ítem seleccionado no existe: "+id)
			continue
		}
		locked[id] = item
	}
	if !verr.Empty() {
		return nil, verr
	}
	return locked, nil
}
