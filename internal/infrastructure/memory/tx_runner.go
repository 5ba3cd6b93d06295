package memory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con el store bloqueado y hace rollback restaurando la copia previa.
type TxRunner struct {
	s *Store
}

// Run bloquea el store, ejecuta fn con repos atados a la "transacción" y restaura el estado si falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := r.s.st.clone()
	if err := fn(&ItemRepo{s: r.s, held: true}, &TransactionRepo{s: r.s, held: true}); err != nil {
		r.s.st = snapshot
		return err
	}
	return nil
}
