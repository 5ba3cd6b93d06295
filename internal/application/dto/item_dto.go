package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem. Stock es el stock inicial.
type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" validate:"required,max=50"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0,max=2147483647"`
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	SupplierID  string          `json:"supplier_id" validate:"required,uuid"`
}

// UpdateItemRequest entrada para actualizar un ítem (sin Stock: se maneja vía transacciones).
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=50"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID  *string          `json:"supplier_id" validate:"omitempty,uuid"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	LowStock    bool            `json:"low_stock"`
	CategoryID  string          `json:"category_id"`
	SupplierID  string          `json:"supplier_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
