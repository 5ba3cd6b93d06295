package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLineRequest línea de transacción en la petición.
// ID solo se usa en actualizaciones para identificar una línea existente.
type TransactionLineRequest struct {
	ID       string           `json:"id" validate:"omitempty,uuid"`
	ItemID   string           `json:"item_id" validate:"required,uuid"`
	Quantity int              `json:"quantity" validate:"required,min=1,max=2147483647"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
}

// CreateTransactionRequest entrada para registrar una transacción.
// Date acepta YYYY-MM-DD o RFC3339.
type CreateTransactionRequest struct {
	TransactionNo string                   `json:"transaction_no" validate:"required,max=50"`
	Date          string                   `json:"date" validate:"required"`
	Type          string                   `json:"type" validate:"required,oneof=in out"`
	Notes         string                   `json:"notes"`
	Items         []TransactionLineRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateTransactionRequest entrada para actualizar una transacción.
// Si Items es nil solo se actualizan los metadatos.
type UpdateTransactionRequest struct {
	TransactionNo *string                  `json:"transaction_no" validate:"omitempty,min=1,max=50"`
	Date          *string                  `json:"date"`
	Type          *string                  `json:"type"`
	Notes         *string                  `json:"notes"`
	Items         []TransactionLineRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// TransactionLineResponse salida de una línea.
type TransactionLineResponse struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// TransactionResponse salida de una transacción con sus líneas.
type TransactionResponse struct {
	ID            string                    `json:"id"`
	TransactionNo string                    `json:"transaction_no"`
	Date          string                    `json:"date"`
	Type          string                    `json:"type"`
	Notes         string                    `json:"notes"`
	CreatedBy     string                    `json:"created_by"`
	Items         []TransactionLineResponse `json:"items"`
	Total         decimal.Decimal           `json:"total"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
