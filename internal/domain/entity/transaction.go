package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TransactionTypeIn  = "in"
	TransactionTypeOut = "out"
)

// Transaction cabecera de un movimiento de inventario (entrada o salida).
// Type no cambia después de la creación.
type Transaction struct {
	ID            string
	TransactionNo string // único
	Date          time.Time
	Type          string // in, out
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []TransactionItem
}

// TransactionItem línea de una transacción. Price se copia al registrar la línea.
type TransactionItem struct {
	ID            string
	TransactionID string
	ItemID        string
	ItemName      string // solo lectura (join con items)
	Quantity      int
	Price         decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidTransactionType indica si t es in u out.
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeIn || t == TransactionTypeOut
}

// Sign +1 para entradas, -1 para salidas.
func (t *Transaction) Sign() int {
	return SignFor(t.Type)
}

// SignFor devuelve el signo del efecto sobre stock de un tipo de transacción.
func SignFor(txType string) int {
	if txType == TransactionTypeOut {
		return -1
	}
	return 1
}

// Subtotal cantidad * precio de la línea.
func (li TransactionItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Total suma de subtotales de las líneas.
func (t *Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range t.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}
