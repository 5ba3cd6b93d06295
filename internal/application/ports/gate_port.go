package ports

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// Gate decide si un actor puede ejecutar una acción sobre un recurso.
// Los casos de uso lo consultan antes de cada mutación; los roles viven en la implementación.
type Gate interface {
	Can(actor entity.Actor, action, resource string) bool
}
