package ledger

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SlipGenerator genera el comprobante imprimible de una transacción.
type SlipGenerator interface {
	GenerateTransactionSlip(ctx context.Context, t *entity.Transaction) ([]byte, error)
}
