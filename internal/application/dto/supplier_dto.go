package dto

import "time"

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Address       string `json:"address" validate:"required"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Email         string `json:"email" validate:"required,email"`
	ContactPerson string `json:"contact_person" validate:"required,max=255"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor (campos opcionales).
type UpdateSupplierRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address       *string `json:"address" validate:"omitempty,min=1"`
	Phone         *string `json:"phone" validate:"omitempty,min=1,max=20"`
	Email         *string `json:"email" validate:"omitempty,email"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,min=1,max=255"`
}

// SupplierResponse salida de un proveedor. Phone y Email pueden venir enmascarados.
type SupplierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	ContactPerson string    `json:"contact_person"`
	Masked        bool      `json:"masked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
