package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/domain/stock"
)

// ItemUseCase casos de uso para ítems de inventario.
// El stock solo se fija al crear; después cambia exclusivamente por transacciones.
type ItemUseCase struct {
	itemRepo     repository.ItemRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	txRepo       repository.TransactionRepository
	gate         ports.Gate
	recorder     ports.ActivityRecorder
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	itemRepo repository.ItemRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	txRepo repository.TransactionRepository,
	gate ports.Gate,
	recorder ports.ActivityRecorder,
) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		txRepo:       txRepo,
		gate:         gate,
		recorder:     recorder,
	}
}

// Create crea un ítem con su stock inicial.
func (uc *ItemUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !uc.gate.Can(actor, authz.ActionCreate, authz.ResourceItem) {
		return nil, domain.ErrForbidden
	}
	verr := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if name == "" {
		verr.Add("name", "el nombre es obligatorio")
	}
	if sku == "" {
		verr.Add("sku", "el SKU es obligatorio")
	}
	if in.Price.IsNegative() {
		verr.Add("price", "el precio no puede ser negativo")
	}
	if in.Stock < 0 {
		verr.Add("stock", "el stock inicial no puede ser negativo")
	} else if in.Stock > stock.Max {
		verr.Add("stock", fmt.Sprintf("el stock inicial no puede superar %d", stock.Max))
	}
	if in.CategoryID == "" {
		verr.Add("category_id", "la categoría es obligatoria")
	}
	if in.SupplierID == "" {
		verr.Add("supplier_id", "el proveedor es obligatorio")
	}
	if err := uc.checkRefs(ctx, in.CategoryID, in.SupplierID, verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}
	existing, err := uc.itemRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateError{Field: "sku"}
	}

	now := time.Now()
	it := &entity.Item{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		SKU:         sku,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.itemRepo.Create(ctx, it); err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, actor, audit.ActionCreated, authz.ResourceItem, it.ID,
		fmt.Sprintf("Created item %s with stock %d", it.Name, it.Stock))
	return toItemResponse(it), nil
}

// GetByID obtiene un ítem.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	it, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(it), nil
}

// List lista ítems por nombre.
func (uc *ItemUseCase) List(ctx context.Context, limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.itemRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update actualiza datos maestros. No permite modificar Stock.
func (uc *ItemUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if !uc.gate.Can(actor, authz.ActionUpdate, authz.ResourceItem) {
		return nil, domain.ErrForbidden
	}
	it, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}

	verr := &domain.ValidationError{}
	if in.Name != nil {
		if n := strings.TrimSpace(*in.Name); n == "" {
			verr.Add("name", "el nombre es obligatorio")
		} else {
			it.Name = n
		}
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			verr.Add("price", "el precio no puede ser negativo")
		} else {
			it.Price = *in.Price
		}
	}
	categoryID, supplierID := "", ""
	if in.CategoryID != nil && *in.CategoryID != it.CategoryID {
		categoryID = *in.CategoryID
	}
	if in.SupplierID != nil && *in.SupplierID != it.SupplierID {
		supplierID = *in.SupplierID
	}
	if err := uc.checkRefs(ctx, categoryID, supplierID, verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}
	if categoryID != "" {
		it.CategoryID = categoryID
	}
	if supplierID != "" {
		it.SupplierID = supplierID
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku != it.SKU {
			other, err := uc.itemRepo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != it.ID {
				return nil, &domain.DuplicateError{Field: "sku"}
			}
			it.SKU = sku
		}
	}

	it.UpdatedAt = time.Now()
	if err := uc.itemRepo.Update(ctx, it); err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, actor, audit.ActionUpdated, authz.ResourceItem, it.ID, "Updated item "+it.Name)
	return toItemResponse(it), nil
}

// Delete elimina el ítem si no aparece en ninguna transacción.
func (uc *ItemUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !uc.gate.Can(actor, authz.ActionDelete, authz.ResourceItem) {
		return domain.ErrForbidden
	}
	it, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return domain.ErrNotFound
	}
	n, err := uc.txRepo.CountByItem(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.HasDependentsError{Resource: "el ítem", Dependent: "líneas de transacción", Count: n}
	}
	if err := uc.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.recorder.Record(ctx, actor, audit.ActionDeleted, authz.ResourceItem, it.ID, "Deleted item "+it.Name)
	return nil
}

// checkRefs agrega a verr los errores de categoría/proveedor inexistentes. Un id vacío no se valida.
func (uc *ItemUseCase) checkRefs(ctx context.Context, categoryID, supplierID string, verr *domain.ValidationError) error {
	if categoryID != "" {
		c, err := uc.categoryRepo.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if c == nil {
			verr.Add("category_id", "la categoría no existe")
		}
	}
	if supplierID != "" {
		s, err := uc.supplierRepo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if s == nil {
			verr.Add("supplier_id", "el proveedor no existe")
		}
	}
	return nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		SKU:         it.SKU,
		Price:       it.Price,
		Stock:       it.Stock,
		LowStock:    it.IsLowStock(),
		CategoryID:  it.CategoryID,
		SupplierID:  it.SupplierID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
