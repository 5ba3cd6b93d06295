// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory (demo local sin PostgreSQL) y en los tests.
//
// Todas las operaciones se serializan sobre un único mutex. TxRunner.Run toma el
// mutex durante todo el callback y guarda una copia del estado para restaurarla
// si el callback falla, lo que da la misma atomicidad que una transacción SQL.
package memory

import (
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

type state struct {
	categories   map[string]*entity.Category
	suppliers    map[string]*entity.Supplier
	items        map[string]*entity.Item
	transactions map[string]*entity.Transaction // sin líneas
	lines        map[string][]*entity.TransactionItem
	users        map[string]*entity.User
	activities   []*entity.Activity
}

func newState() *state {
	return &state{
		categories:   make(map[string]*entity.Category),
		suppliers:    make(map[string]*entity.Supplier),
		items:        make(map[string]*entity.Item),
		transactions: make(map[string]*entity.Transaction),
		lines:        make(map[string][]*entity.TransactionItem),
		users:        make(map[string]*entity.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range s.suppliers {
		cp := *v
		c.suppliers[k] = &cp
	}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	for k, v := range s.transactions {
		cp := *v
		c.transactions[k] = &cp
	}
	for k, ls := range s.lines {
		out := make([]*entity.TransactionItem, len(ls))
		for i, l := range ls {
			cp := *l
			out[i] = &cp
		}
		c.lines[k] = out
	}
	for k, v := range s.users {
		cp := *v
		c.users[k] = &cp
	}
	c.activities = append(c.activities, s.activities...)
	return c
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// do ejecuta fn sobre el estado. held indica que el mutex ya lo tiene TxRunner.Run.
func (s *Store) do(held bool, fn func(st *state) error) error {
	if !held {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// Categories repositorio de categorías fuera de transacción.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Suppliers repositorio de proveedores fuera de transacción.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Items repositorio de ítems fuera de transacción.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Transactions repositorio de transacciones fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Activities repositorio del registro de actividad.
func (s *Store) Activities() *ActivityRepo { return &ActivityRepo{s: s} }

// Stats repositorio de consultas del dashboard.
func (s *Store) Stats() *StatsRepo { return &StatsRepo{s: s} }

// TxRunner runner transaccional sobre este store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
