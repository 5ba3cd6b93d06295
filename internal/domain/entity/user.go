package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del back office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // super_admin, admin, user
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor arma el actor a partir del usuario.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Actor quién ejecuta una operación. Se pasa explícitamente a cada caso de uso.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

// SystemActor actor usado por procesos internos (seeder).
var SystemActor = Actor{UserID: "", Name: "system", Role: RoleSuperAdmin}
