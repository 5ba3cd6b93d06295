// Package stock contiene la política pura de ajuste de existencias.
//
// Apply no toca persistencia: recibe el stock actual y un delta con signo y
// decide el nuevo valor según el modo. El bloqueo y la escritura los hace
// inventory.AdjustStock.
package stock

import (
	"fmt"
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Max tope de existencias y de cantidad por línea; coincide con INTEGER de postgres.
const Max = math.MaxInt32

// Mode define qué hacer cuando el candidato queda negativo.
type Mode int

const (
	// Strict rechaza el ajuste con InsufficientStockError.
	Strict Mode = iota
	// Clamped deja el stock en 0 y descarta la parte sobrante.
	Clamped
)

func (m Mode) String() string {
	if m == Clamped {
		return "clamped"
	}
	return "strict"
}

// Result resultado de aplicar un delta.
type Result struct {
	Before  int
	After   int
	Clamped bool // true si se descartó cantidad por el piso en 0
}

// Apply calcula current+delta según el modo.
func Apply(current, delta int, mode Mode) (Result, error) {
	if delta > 0 && current > Max-delta {
		return Result{Before: current, After: current},
			domain.NewValidationError("stock", fmt.Sprintf("el stock resultante supera el máximo de %d", Max))
	}
	candidate := current + delta
	if candidate >= 0 {
		return Result{Before: current, After: candidate}, nil
	}
	if mode == Strict {
		return Result{Before: current, After: current}, &domain.InsufficientStockError{
			Available: current,
			Requested: -delta,
		}
	}
	return Result{Before: current, After: 0, Clamped: true}, nil
}

// Signed devuelve la cantidad con el signo del tipo de transacción (+in, -out).
func Signed(sign, quantity int) int {
	return sign * quantity
}
