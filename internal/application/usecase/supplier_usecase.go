package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
)

// SupplierUseCase casos de uso CRUD para proveedores.
// El listado siempre enmascara teléfono y email; el detalle solo los muestra completos
// a quien tenga view_sensitive_supplier_info.
type SupplierUseCase struct {
	repo     repository.SupplierRepository
	itemRepo repository.ItemRepository
	gate     ports.Gate
	recorder ports.ActivityRecorder
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(
	repo repository.SupplierRepository,
	itemRepo repository.ItemRepository,
	gate ports.Gate,
	recorder ports.ActivityRecorder,
) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, itemRepo: itemRepo, gate: gate, recorder: recorder}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !uc.gate.Can(actor, authz.ActionCreate, authz.ResourceSupplier) {
		return nil, domain.ErrForbidden
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Address:       in.Address,
		Phone:         in.Phone,
		Email:         in.Email,
		ContactPerson: in.ContactPerson,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, actor, audit.ActionCreated, authz.ResourceSupplier, s.ID, "Created supplier "+s.Name)
	return uc.toResponse(actor, s, false), nil
}

// GetByID obtiene un proveedor, enmascarado según los permisos del actor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(actor, s, false), nil
}

// List lista proveedores siempre enmascarados.
func (uc *SupplierUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.SupplierListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *uc.toResponse(actor, s, true))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Update modifica los campos enviados.
func (uc *SupplierUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if !uc.gate.Can(actor, authz.ActionUpdate, authz.ResourceSupplier) {
		return nil, domain.ErrForbidden
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Email != nil {
		s.Email = *in.Email
	}
	if in.ContactPerson != nil {
		s.ContactPerson = *in.ContactPerson
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, actor, audit.ActionUpdated, authz.ResourceSupplier, s.ID, "Updated supplier "+s.Name)
	return uc.toResponse(actor, s, false), nil
}

// Delete elimina el proveedor si ningún ítem lo referencia.
func (uc *SupplierUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !uc.gate.Can(actor, authz.ActionDelete, authz.ResourceSupplier) {
		return domain.ErrForbidden
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	n, err := uc.itemRepo.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.HasDependentsError{Resource: "el proveedor", Dependent: "ítems", Count: n}
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.recorder.Record(ctx, actor, audit.ActionDeleted, authz.ResourceSupplier, s.ID, "Deleted supplier "+s.Name)
	return nil
}

func (uc *SupplierUseCase) toResponse(actor entity.Actor, s *entity.Supplier, forceMask bool) *dto.SupplierResponse {
	out := &dto.SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		Address:       s.Address,
		Phone:         s.Phone,
		Email:         s.Email,
		ContactPerson: s.ContactPerson,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if forceMask || !uc.gate.Can(actor, authz.ActionViewSensitive, authz.ResourceSupplierInfo) {
		out.Phone = fieldcrypt.MaskPhone(s.Phone)
		out.Email = fieldcrypt.MaskEmail(s.Email)
		out.Masked = true
	}
	return out
}
