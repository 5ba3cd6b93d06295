package ports

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ActivityRecorder registra actividad de auditoría. Es fire-and-forget: las fallas
// se registran en el log de la implementación y nunca se devuelven al llamador.
type ActivityRecorder interface {
	Record(ctx context.Context, actor entity.Actor, action, subjectType, subjectID, description string)
}

// StockEvent cambio de stock publicado a los suscriptores en tiempo real.
type StockEvent struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

// StockPublisher publica cambios de stock (ej. hub websocket).
type StockPublisher interface {
	PublishStock(ev StockEvent)
}
