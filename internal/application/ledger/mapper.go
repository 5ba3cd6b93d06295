package ledger

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toTransactionResponse(t *entity.Transaction) *dto.TransactionResponse {
	if t == nil {
		return nil
	}
	lines := make([]dto.TransactionLineResponse, 0, len(t.Items))
	for _, li := range t.Items {
		lines = append(lines, dto.TransactionLineResponse{
			ID:       li.ID,
			ItemID:   li.ItemID,
			ItemName: li.ItemName,
			Quantity: li.Quantity,
			Price:    li.Price,
			Subtotal: li.Subtotal(),
		})
	}
	return &dto.TransactionResponse{
		ID:            t.ID,
		TransactionNo: t.TransactionNo,
		Date:          t.Date.Format(time.DateOnly),
		Type:          t.Type,
		Notes:         t.Notes,
		CreatedBy:     t.CreatedBy,
		Items:         lines,
		Total:         t.Total(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
