// Package ledger registra transacciones de inventario (entradas y salidas) y mantiene
// items.stock conciliado con sus líneas en cada alta, edición y borrado.
//
// Toda escritura corre dentro de TxRunner.Run: cabecera, líneas y ajustes de stock se
// confirman juntos o no se confirma nada.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/domain/stock"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const (
	latestDefaultLimit = 5
	subjectTransaction = "transaction"
	subjectItem        = "item"
)

// LedgerUseCase casos de uso de transacciones de inventario.
type LedgerUseCase struct {
	txRunner  inventory.TxRunner
	txRepo    repository.TransactionRepository
	gate      ports.Gate
	recorder  ports.ActivityRecorder
	publisher ports.StockPublisher
	slips     SlipGenerator
	log       *logger.Logger
	now       func() time.Time
}

// Deps dependencias del ledger. Publisher y Slips son opcionales.
type Deps struct {
	TxRunner  inventory.TxRunner
	TxRepo    repository.TransactionRepository
	Gate      ports.Gate
	Recorder  ports.ActivityRecorder
	Publisher ports.StockPublisher
	Slips     SlipGenerator
	Log       *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(d Deps) *LedgerUseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:  d.TxRunner,
		txRepo:    d.TxRepo,
		gate:      d.Gate,
		recorder:  d.Recorder,
		publisher: d.Publisher,
		slips:     d.Slips,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// Create registra la transacción y aplica el efecto de cada línea sobre el stock.
// Para salidas valida primero todas las líneas contra el stock bloqueado: si algún ítem
// no alcanza se rechaza sin escribir nada.
func (uc *LedgerUseCase) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*dto.TransactionResponse, error) {
	if !uc.gate.Can(actor, authz.ActionCreate, authz.ResourceTransaction) {
		return nil, domain.ErrForbidden
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	process := authz.ActionProcessIncoming
	if in.Type == entity.TransactionTypeOut {
		process = authz.ActionProcessOutgoing
	}
	if !uc.gate.Can(actor, process, authz.ResourceTransaction) {
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	t := &entity.Transaction{
		ID:            uuid.New().String(),
		TransactionNo: in.TransactionNo,
		Date:          in.Date,
		Type:          in.Type,
		Notes:         in.Notes,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var adjustments []*inventory.Adjustment
	var saved *entity.Transaction
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, txRepo repository.TransactionRepository) error {
		adjustments = adjustments[:0]

		existing, err := txRepo.GetByNo(ctx, t.TransactionNo)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateError{Field: "transaction_no"}
		}

		locked, err := inventory.LockItems(ctx, itemRepo, lineItemIDs(in.Lines), "items")
		if err != nil {
			return err
		}
		if t.Type == entity.TransactionTypeOut {
			if err := checkAvailability(locked, in.Lines); err != nil {
				return err
			}
		}

		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}
		sign := t.Sign()
		for _, l := range in.Lines {
			line := &entity.TransactionItem{
				ID:            uuid.New().String(),
				TransactionID: t.ID,
				ItemID:        l.ItemID,
				Quantity:      l.Quantity,
				Price:         l.Price,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := txRepo.CreateItem(ctx, line); err != nil {
				return err
			}
			adj, err := inventory.AdjustStock(ctx, itemRepo, l.ItemID, stock.Signed(sign, l.Quantity), stock.Strict)
			if err != nil {
				return err
			}
			adjustments = append(adjustments, adj)
		}

		saved, err = txRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, actor, audit.ActionCreated, subjectTransaction, saved.ID,
		fmt.Sprintf("Created %s transaction %s", saved.Type, saved.TransactionNo))
	uc.afterAdjust(ctx, actor, adjustments)
	return toTransactionResponse(saved), nil
}

// Update cambia metadatos y, si se envían líneas, concilia el stock línea a línea.
// El tipo no puede cambiar. Los ajustes de edición usan piso en 0 (clamped).
func (uc *LedgerUseCase) Update(ctx context.Context, actor entity.Actor, id string, in UpdateInput) (*dto.TransactionResponse, error) {
	if !uc.gate.Can(actor, authz.ActionUpdate, authz.ResourceTransaction) {
		return nil, domain.ErrForbidden
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	var adjustments []*inventory.Adjustment
	var saved *entity.Transaction
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, txRepo repository.TransactionRepository) error {
		adjustments = adjustments[:0]

		cur, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if in.Type != nil && *in.Type != cur.Type {
			return &domain.ImmutableFieldError{Field: "type"}
		}

		if in.TransactionNo != nil && *in.TransactionNo != cur.TransactionNo {
			other, err := txRepo.GetByNo(ctx, *in.TransactionNo)
			if err != nil {
				return err
			}
			if other != nil && other.ID != cur.ID {
				return &domain.DuplicateError{Field: "transaction_no"}
			}
			cur.TransactionNo = *in.TransactionNo
		}
		if in.Date != nil {
			cur.Date = *in.Date
		}
		if in.Notes != nil {
			cur.Notes = *in.Notes
		}
		now := uc.now()
		cur.UpdatedAt = now
		if err := txRepo.Update(ctx, cur); err != nil {
			return err
		}

		if in.ReplaceLines {
			adjustments, err = uc.reconcileLines(ctx, itemRepo, txRepo, cur, in.Lines, now)
			if err != nil {
				return err
			}
		}

		saved, err = txRepo.GetByID(ctx, cur.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, actor, audit.ActionUpdated, subjectTransaction, saved.ID,
		fmt.Sprintf("Updated transaction %s", saved.TransactionNo))
	uc.afterAdjust(ctx, actor, adjustments)
	return toTransactionResponse(saved), nil
}

// reconcileLines compara las líneas guardadas con las nuevas por ID de línea:
// coincidentes ajustan la diferencia, nuevas aplican su efecto completo y las
// ausentes revierten el suyo.
func (uc *LedgerUseCase) reconcileLines(
	ctx context.Context,
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	cur *entity.Transaction,
	lines []LineInput,
	now time.Time,
) ([]*inventory.Adjustment, error) {
	existing := make(map[string]entity.TransactionItem, len(cur.Items))
	ids := make([]string, 0, len(cur.Items)+len(lines))
	for _, li := range cur.Items {
		existing[li.ID] = li
		ids = append(ids, li.ItemID)
	}

	verr := &domain.ValidationError{}
	matched := make(map[string]bool, len(lines))
	for i, l := range lines {
		ids = append(ids, l.ItemID)
		if l.ID == "" {
			continue
		}
		if _, ok := existing[l.ID]; !ok {
			verr.Add(fmt.Sprintf("items.%d.id", i), "la línea no pertenece a esta transacción")
			continue
		}
		if matched[l.ID] {
			verr.Add(fmt.Sprintf("items.%d.id", i), "la línea está repetida")
			continue
		}
		matched[l.ID] = true
	}
	if !verr.Empty() {
		return nil, verr
	}

	if _, err := inventory.LockItems(ctx, itemRepo, ids, "items"); err != nil {
		return nil, err
	}

	sign := cur.Sign()
	var adjustments []*inventory.Adjustment
	adjust := func(itemID string, delta int) error {
		if delta == 0 {
			return nil
		}
		adj, err := inventory.AdjustStock(ctx, itemRepo, itemID, delta, stock.Clamped)
		if err != nil {
			return err
		}
		adjustments = append(adjustments, adj)
		return nil
	}

	for _, l := range lines {
		if l.ID == "" {
			line := &entity.TransactionItem{
				ID:            uuid.New().String(),
				TransactionID: cur.ID,
				ItemID:        l.ItemID,
				Quantity:      l.Quantity,
				Price:         l.Price,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := txRepo.CreateItem(ctx, line); err != nil {
				return nil, err
			}
			if err := adjust(l.ItemID, stock.Signed(sign, l.Quantity)); err != nil {
				return nil, err
			}
			continue
		}

		old := existing[l.ID]
		if old.ItemID == l.ItemID {
			if err := adjust(l.ItemID, stock.Signed(sign, l.Quantity-old.Quantity)); err != nil {
				return nil, err
			}
		} else {
			if err := adjust(old.ItemID, -stock.Signed(sign, old.Quantity)); err != nil {
				return nil, err
			}
			if err := adjust(l.ItemID, stock.Signed(sign, l.Quantity)); err != nil {
				return nil, err
			}
		}
		updated := old
		updated.ItemID = l.ItemID
		updated.Quantity = l.Quantity
		updated.Price = l.Price
		updated.UpdatedAt = now
		if err := txRepo.UpdateItem(ctx, &updated); err != nil {
			return nil, err
		}
	}

	for _, old := range cur.Items {
		if matched[old.ID] {
			continue
		}
		if err := adjust(old.ItemID, -stock.Signed(sign, old.Quantity)); err != nil {
			return nil, err
		}
		if err := txRepo.DeleteItem(ctx, old.ID); err != nil {
			return nil, err
		}
	}
	return adjustments, nil
}

// Delete revierte el efecto de cada línea (piso en 0) y elimina líneas y cabecera.
func (uc *LedgerUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !uc.gate.Can(actor, authz.ActionDelete, authz.ResourceTransaction) {
		return domain.ErrForbidden
	}

	var adjustments []*inventory.Adjustment
	var deleted *entity.Transaction
	err := uc.txRunner.Run(ctx, func(itemRepo repository.ItemRepository, txRepo repository.TransactionRepository) error {
		adjustments = adjustments[:0]

		cur, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		deleted = cur

		ids := make([]string, 0, len(cur.Items))
		for _, li := range cur.Items {
			ids = append(ids, li.ItemID)
		}
		if _, err := inventory.LockItems(ctx, itemRepo, ids, "items"); err != nil {
			return err
		}

		sign := cur.Sign()
		for _, li := range cur.Items {
			adj, err := inventory.AdjustStock(ctx, itemRepo, li.ItemID, -stock.Signed(sign, li.Quantity), stock.Clamped)
			if err != nil {
				return err
			}
			adjustments = append(adjustments, adj)
		}
		if err := txRepo.DeleteItems(ctx, cur.ID); err != nil {
			return err
		}
		return txRepo.Delete(ctx, cur.ID)
	})
	if err != nil {
		return err
	}

	uc.recorder.Record(ctx, actor, audit.ActionDeleted, subjectTransaction, deleted.ID,
		fmt.Sprintf("Deleted transaction %s", deleted.TransactionNo))
	uc.afterAdjust(ctx, actor, adjustments)
	return nil
}

// GetByID obtiene una transacción con sus líneas.
func (uc *LedgerUseCase) GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return toTransactionResponse(t), nil
}

// List lista transacciones por fecha descendente.
func (uc *LedgerUseCase) List(ctx context.Context, limit, offset int) (*dto.TransactionListResponse, error) {
	list, err := uc.txRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransactionResponse(t))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Latest devuelve las últimas transacciones por fecha (5 si limit <= 0).
func (uc *LedgerUseCase) Latest(ctx context.Context, limit int) ([]dto.TransactionResponse, error) {
	if limit <= 0 {
		limit = latestDefaultLimit
	}
	list, err := uc.txRepo.Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransactionResponse(t))
	}
	return out, nil
}

// Slip genera el comprobante PDF de la transacción.
func (uc *LedgerUseCase) Slip(ctx context.Context, id string) ([]byte, string, error) {
	if uc.slips == nil {
		return nil, "", fmt.Errorf("generador de comprobantes no configurado")
	}
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if t == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.slips.GenerateTransactionSlip(ctx, t)
	if err != nil {
		return nil, "", err
	}
	return pdf, "transaccion-" + t.TransactionNo + ".pdf", nil
}

// afterAdjust audita y publica cada cambio de stock ya confirmado.
func (uc *LedgerUseCase) afterAdjust(ctx context.Context, actor entity.Actor, adjustments []*inventory.Adjustment) {
	for _, adj := range adjustments {
		if adj.Clamped {
			uc.log.Warn().
				Str("item_id", adj.ItemID).
				Int("before", adj.Before).
				Int("delta", adj.Delta).
				Int("discarded", -(adj.Before + adj.Delta)).
				Msg("ajuste de stock recortado en 0")
		}
		if adj.Before == adj.After {
			continue
		}
		uc.recorder.Record(ctx, actor, audit.ActionStockChanged, subjectItem, adj.ItemID,
			fmt.Sprintf("Stock changed from %d to %d", adj.Before, adj.After))
		if uc.publisher != nil {
			uc.publisher.PublishStock(ports.StockEvent{
				ItemID:   adj.ItemID,
				ItemName: adj.ItemName,
				Before:   adj.Before,
				After:    adj.After,
			})
		}
	}
}

func lineItemIDs(lines []LineInput) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	return ids
}

// checkAvailability suma lo pedido por ítem y lo compara con el stock bloqueado.
func checkAvailability(locked map[string]*entity.Item, lines []LineInput) error {
	requested := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := requested[l.ItemID]; !ok {
			order = append(order, l.ItemID)
		}
		if requested[l.ItemID] > stock.Max-l.Quantity {
			requested[l.ItemID] = stock.Max
			continue
		}
		requested[l.ItemID] += l.Quantity
	}
	sort.Strings(order)
	for _, id := range order {
		item := locked[id]
		if requested[id] > item.Stock {
			return &domain.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: item.Stock,
				Requested: requested[id],
			}
		}
	}
	return nil
}
