// Package authz define los roles del back office y sus permisos.
//
// Un permiso se nombra <acción>_<recurso> (ej. create_transaction). El rol
// super_admin pasa cualquier verificación.
package authz

import (
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Acciones.
const (
	ActionView            = "view"
	ActionCreate          = "create"
	ActionUpdate          = "update"
	ActionDelete          = "delete"
	ActionProcessIncoming = "process_incoming"
	ActionProcessOutgoing = "process_outgoing"
	ActionViewSensitive   = "view_sensitive"
)

// Recursos.
const (
	ResourceCategory     = "category"
	ResourceSupplier     = "supplier"
	ResourceItem         = "item"
	ResourceTransaction  = "transaction"
	ResourceSupplierInfo = "supplier_info"
)

var _ ports.Gate = (*RoleGate)(nil)

// Permission nombre del permiso para acción y recurso.
func Permission(action, resource string) string {
	return action + "_" + resource
}

// RoleGate resuelve permisos a partir del rol del actor.
type RoleGate struct {
	roles map[string]map[string]struct{}
}

// NewRoleGate construye el gate con la matriz de roles por defecto.
func NewRoleGate() *RoleGate {
	g := &RoleGate{roles: make(map[string]map[string]struct{})}

	crud := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}
	resources := []string{ResourceCategory, ResourceSupplier, ResourceItem, ResourceTransaction}

	var admin []string
	for _, res := range resources {
		for _, act := range crud {
			admin = append(admin, Permission(act, res))
		}
	}
	admin = append(admin,
		Permission(ActionProcessIncoming, ResourceTransaction),
		Permission(ActionProcessOutgoing, ResourceTransaction),
		Permission(ActionViewSensitive, ResourceSupplierInfo),
	)
	g.Grant(entity.RoleAdmin, admin...)

	g.Grant(entity.RoleUser,
		Permission(ActionView, ResourceCategory),
		Permission(ActionView, ResourceSupplier),
		Permission(ActionView, ResourceItem),
		Permission(ActionView, ResourceTransaction),
		Permission(ActionCreate, ResourceTransaction),
	)
	return g
}

// Grant agrega permisos a un rol.
func (g *RoleGate) Grant(role string, permissions ...string) {
	set, ok := g.roles[role]
	if !ok {
		set = make(map[string]struct{})
		g.roles[role] = set
	}
	for _, p := range permissions {
		set[p] = struct{}{}
	}
}

// Can indica si el actor puede ejecutar action sobre resource.
func (g *RoleGate) Can(actor entity.Actor, action, resource string) bool {
	if actor.Role == entity.RoleSuperAdmin {
		return true
	}
	set, ok := g.roles[actor.Role]
	if !ok {
		return false
	}
	_, ok = set[Permission(action, resource)]
	return ok
}

// Permissions lista los permisos de un rol (vacío para roles desconocidos).
func (g *RoleGate) Permissions(role string) []string {
	out := make([]string, 0, len(g.roles[role]))
	for p := range g.roles[role] {
		out = append(out, p)
	}
	return out
}
