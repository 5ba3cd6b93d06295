package entity

import "time"

// Supplier proveedor de ítems. Address, Phone, Email y ContactPerson se cifran en reposo;
// en el dominio siempre viajan en claro.
type Supplier struct {
	ID            string
	Name          string
	Address       string
	Phone         string
	Email         string
	ContactPerson string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
