package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold un ítem con stock por debajo de este valor se considera bajo.
const LowStockThreshold = 10

// Item representa un artículo del inventario. Stock solo cambia vía AdjustStock.
type Item struct {
	ID          string
	Name        string
	Description string
	SKU         string          // código único
	Price       decimal.Decimal // precio de lista, no afecta líneas ya registradas
	Stock       int
	CategoryID  string
	SupplierID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si el ítem está por debajo del umbral de stock bajo.
func (i *Item) IsLowStock() bool {
	return i.Stock < LowStockThreshold
}
