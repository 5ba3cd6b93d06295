package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/stock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin    = entity.Actor{UserID: "admin-1", Name: "Admin", Role: entity.RoleAdmin}
	staff    = entity.Actor{UserID: "user-1", Name: "Staff", Role: entity.RoleUser}
	baseDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

type capturePublisher struct {
	mu     sync.Mutex
	events []ports.StockEvent
}

func (p *capturePublisher) PublishStock(ev ports.StockEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type fixture struct {
	store *memory.Store
	uc    *ledger.LedgerUseCase
	pub   *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &capturePublisher{}
	uc := ledger.NewLedgerUseCase(ledger.Deps{
		TxRunner:  store.TxRunner(),
		TxRepo:    store.Transactions(),
		Gate:      authz.NewRoleGate(),
		Recorder:  audit.NewRecorder(store.Activities(), logger.Nop()),
		Publisher: pub,
		Log:       logger.Nop(),
	})
	return &fixture{store: store, uc: uc, pub: pub}
}

func (f *fixture) item(t *testing.T, name string, stock int) string {
	t.Helper()
	now := time.Now()
	it := &entity.Item{
		ID:        uuid.New().String(),
		Name:      name,
		SKU:       "SKU-" + name,
		Price:     decimal.NewFromInt(1000),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it.ID
}

func (f *fixture) stock(t *testing.T, itemID string) int {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), itemID)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.Stock
}

func line(itemID string, qty int) ledger.LineInput {
	return ledger.LineInput{ItemID: itemID, Quantity: qty, Price: decimal.NewFromInt(2500)}
}

func createInput(no, typ string, lines ...ledger.LineInput) ledger.CreateInput {
	return ledger.CreateInput{TransactionNo: no, Date: baseDate, Type: typ, Lines: lines}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios principales
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A: stock 10 → salida 4 → 6 → editar línea a 7 → 3 → borrar → 10.
func TestLedger_EscenarioSalidaEditarBorrar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "tornillo", 10)

	created, err := f.uc.Create(ctx, admin, createInput("TX-A", entity.TransactionTypeOut, line(itemID, 4)))
	require.NoError(t, err)
	assert.Equal(t, 6, f.stock(t, itemID))
	require.Len(t, created.Items, 1)

	lines := []ledger.LineInput{{ID: created.Items[0].ID, ItemID: itemID, Quantity: 7, Price: created.Items[0].Price}}
	_, err = f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{ReplaceLines: true, Lines: lines})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, itemID))

	require.NoError(t, f.uc.Delete(ctx, admin, created.ID))
	assert.Equal(t, 10, f.stock(t, itemID))

	_, err = f.uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Escenario B: stock 2 → salida 5 rechazada, stock sigue en 2.
func TestLedger_SalidaSinStockRechazada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "tuerca", 2)

	_, err := f.uc.Create(ctx, admin, createInput("TX-B", entity.TransactionTypeOut, line(itemID, 5)))
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "tuerca", ise.ItemName)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 5, ise.Requested)
	assert.Equal(t, 2, f.stock(t, itemID))

	list, err := f.uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items, "no debe persistirse la cabecera")
}

func TestLedger_EntradaSumaStock(t *testing.T) {
	f := newFixture(t)
	itemID := f.item(t, "clavo", 0)

	out, err := f.uc.Create(context.Background(), admin, createInput("TX-IN", entity.TransactionTypeIn, line(itemID, 12)))
	require.NoError(t, err)
	assert.Equal(t, 12, f.stock(t, itemID))
	assert.Equal(t, "clavo", out.Items[0].ItemName)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, admin.UserID, out.CreatedBy)
}

// Si una sola línea no alcanza, ninguna línea se aplica.
func TestLedger_SalidaTodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "a", 10)
	b := f.item(t, "b", 1)

	_, err := f.uc.Create(ctx, admin, createInput("TX-ALL", entity.TransactionTypeOut, line(a, 3), line(b, 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, f.stock(t, a))
	assert.Equal(t, 1, f.stock(t, b))
}

// Dos líneas del mismo ítem se suman para la validación.
func TestLedger_SalidaAgregaLineasDelMismoItem(t *testing.T) {
	f := newFixture(t)
	itemID := f.item(t, "cable", 6)

	_, err := f.uc.Create(context.Background(), admin, createInput("TX-AGG", entity.TransactionTypeOut, line(itemID, 4), line(itemID, 4)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, f.stock(t, itemID))
}

func TestLedger_CambiarTipoEsInmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "pintura", 5)

	created, err := f.uc.Create(ctx, admin, createInput("TX-T", entity.TransactionTypeIn, line(itemID, 3)))
	require.NoError(t, err)

	out := entity.TransactionTypeOut
	_, err = f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{Type: &out})
	require.ErrorIs(t, err, domain.ErrImmutableField)

	var ife *domain.ImmutableFieldError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "type", ife.Field)
	assert.Equal(t, 8, f.stock(t, itemID), "el stock no debe tocarse")

	same := entity.TransactionTypeIn
	_, err = f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{Type: &same})
	assert.NoError(t, err, "enviar el mismo tipo no es un cambio")
}

func TestLedger_ActualizarSoloMetadatos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "lija", 5)

	created, err := f.uc.Create(ctx, admin, createInput("TX-M", entity.TransactionTypeIn, line(itemID, 3)))
	require.NoError(t, err)

	no := "TX-M2"
	date := baseDate.AddDate(0, 0, 3)
	notes := "recibido parcial"
	out, err := f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{TransactionNo: &no, Date: &date, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "TX-M2", out.TransactionNo)
	assert.Equal(t, "2026-03-04", out.Date)
	assert.Equal(t, notes, out.Notes)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 8, f.stock(t, itemID))
}

// Borrar una entrada cuyo stock ya se consumió deja el stock en 0, no negativo.
func TestLedger_BorrarRecortaEnCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "cemento", 0)

	in, err := f.uc.Create(ctx, admin, createInput("TX-IN1", entity.TransactionTypeIn, line(itemID, 5)))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, admin, createInput("TX-OUT1", entity.TransactionTypeOut, line(itemID, 4)))
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, itemID))

	require.NoError(t, f.uc.Delete(ctx, admin, in.ID))
	assert.Equal(t, 0, f.stock(t, itemID))
}

// Editar una entrada por debajo de lo ya consumido también recorta en 0.
func TestLedger_EditarRecortaEnCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "arena", 0)

	in, err := f.uc.Create(ctx, admin, createInput("TX-IN2", entity.TransactionTypeIn, line(itemID, 10)))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, admin, createInput("TX-OUT2", entity.TransactionTypeOut, line(itemID, 8)))
	require.NoError(t, err)

	lines := []ledger.LineInput{{ID: in.Items[0].ID, ItemID: itemID, Quantity: 1}}
	_, err = f.uc.Update(ctx, admin, in.ID, ledger.UpdateInput{ReplaceLines: true, Lines: lines})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, itemID))
}

func TestLedger_BorrarYRecrearReproduceStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "madera", 20)

	first, err := f.uc.Create(ctx, admin, createInput("TX-R", entity.TransactionTypeOut, line(itemID, 7)))
	require.NoError(t, err)
	after := f.stock(t, itemID)

	require.NoError(t, f.uc.Delete(ctx, admin, first.ID))
	_, err = f.uc.Create(ctx, admin, createInput("TX-R", entity.TransactionTypeOut, line(itemID, 7)))
	require.NoError(t, err)
	assert.Equal(t, after, f.stock(t, itemID))
}

func TestLedger_ConciliacionDeLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "a", 0)
	b := f.item(t, "b", 0)
	c := f.item(t, "c", 0)

	created, err := f.uc.Create(ctx, admin, createInput("TX-REC", entity.TransactionTypeIn, line(a, 5), line(b, 3)))
	require.NoError(t, err)
	require.Len(t, created.Items, 2)
	lineA, lineB := created.Items[0], created.Items[1]
	if lineA.ItemID != a {
		lineA, lineB = lineB, lineA
	}

	// línea A pasa a ítem C con cantidad 4; línea B se elimina; nueva línea de A por 2.
	lines := []ledger.LineInput{
		{ID: lineA.ID, ItemID: c, Quantity: 4},
		{ItemID: a, Quantity: 2},
	}
	out, err := f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{ReplaceLines: true, Lines: lines})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	assert.Equal(t, 2, f.stock(t, a))
	assert.Equal(t, 0, f.stock(t, b))
	assert.Equal(t, 4, f.stock(t, c))
}

func TestLedger_LineaAjenaEsValidacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "x", 0)

	created, err := f.uc.Create(ctx, admin, createInput("TX-V", entity.TransactionTypeIn, line(itemID, 1)))
	require.NoError(t, err)

	lines := []ledger.LineInput{{ID: "no-existe", ItemID: itemID, Quantity: 2}}
	_, err = f.uc.Update(ctx, admin, created.ID, ledger.UpdateInput{ReplaceLines: true, Lines: lines})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items.0.id")
	assert.Equal(t, 1, f.stock(t, itemID))
}

func TestLedger_NumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "y", 0)

	_, err := f.uc.Create(ctx, admin, createInput("TX-DUP", entity.TransactionTypeIn, line(itemID, 1)))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, admin, createInput("TX-DUP", entity.TransactionTypeIn, line(itemID, 1)))

	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "transaction_no", dup.Field)
	assert.Equal(t, 1, f.stock(t, itemID))
}

func TestLedger_ItemInexistenteEsValidacion(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), admin, createInput("TX-NI", entity.TransactionTypeIn, line("fantasma", 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t)
	in := ledger.CreateInput{Type: "transfer", Lines: []ledger.LineInput{{Quantity: 0, Price: decimal.NewFromInt(-1)}}}

	_, err := f.uc.Create(context.Background(), admin, in)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"transaction_no", "date", "type", "items.0.item_id", "items.0.quantity", "items.0.price"} {
		assert.Contains(t, verr.Fields, field)
	}
}

// Cantidades fuera del rango de INTEGER no llegan a la base ni desbordan la suma.
func TestLedger_CantidadSobreElMaximo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "perno", 5)

	_, err := f.uc.Create(ctx, admin, createInput("TX-MAX", entity.TransactionTypeOut, line(itemID, math.MaxInt)))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items.0.quantity")
	assert.Equal(t, 5, f.stock(t, itemID))

	_, err = f.uc.Create(ctx, admin, createInput("TX-MAX2", entity.TransactionTypeOut,
		line(itemID, stock.Max), line(itemID, stock.Max)))
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, stock.Max, ise.Requested)
	assert.Equal(t, 5, f.stock(t, itemID))

	_, err = f.uc.Create(ctx, admin, createInput("TX-MAX3", entity.TransactionTypeIn, line(itemID, stock.Max)))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 5, f.stock(t, itemID))

	list, err := f.uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestLedger_PermisosDelActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "z", 10)

	// user tiene create_transaction pero no process_incoming_transaction
	_, err := f.uc.Create(ctx, staff, createInput("TX-P", entity.TransactionTypeIn, line(itemID, 1)))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := f.uc.Create(ctx, admin, createInput("TX-P", entity.TransactionTypeIn, line(itemID, 1)))
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Delete(ctx, staff, created.ID), domain.ErrForbidden)
	assert.Equal(t, 11, f.stock(t, itemID))
}

func TestLedger_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notes := "x"
	_, err := f.uc.Update(ctx, admin, "nope", ledger.UpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, admin, "nope"), domain.ErrNotFound)
}

func TestLedger_AuditoriaYPublicacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "audit", 3)

	created, err := f.uc.Create(ctx, admin, createInput("TX-AU", entity.TransactionTypeIn, line(itemID, 2)))
	require.NoError(t, err)

	txLog, err := f.store.Activities().ListBySubject(ctx, "transaction", created.ID, 0)
	require.NoError(t, err)
	require.Len(t, txLog, 1)
	assert.Equal(t, audit.ActionCreated, txLog[0].Action)
	assert.Equal(t, admin.UserID, txLog[0].CauserID)

	itemLog, err := f.store.Activities().ListBySubject(ctx, "item", itemID, 0)
	require.NoError(t, err)
	require.Len(t, itemLog, 1)
	assert.Equal(t, "Stock changed from 3 to 5", itemLog[0].Description)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, 5, f.pub.events[0].After)
}

func TestLedger_FallaNoAudita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "noaudit", 1)

	_, err := f.uc.Create(ctx, admin, createInput("TX-NA", entity.TransactionTypeOut, line(itemID, 5)))
	require.Error(t, err)

	list, err := f.store.Activities().ListBySubject(ctx, "", "", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.pub.events)
}

func TestLedger_UltimasPorFecha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.item(t, "latest", 0)

	for i := 0; i < 7; i++ {
		in := createInput(fmt.Sprintf("TX-L%d", i), entity.TransactionTypeIn, line(itemID, 1))
		in.Date = baseDate.AddDate(0, 0, i)
		_, err := f.uc.Create(ctx, admin, in)
		require.NoError(t, err)
	}

	latest, err := f.uc.Latest(ctx, 0)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, "TX-L6", latest[0].TransactionNo)
	assert.Equal(t, "TX-L2", latest[4].TransactionNo)
}

// Salidas concurrentes sobre el mismo ítem no pueden pasar ambas la validación.
func TestLedger_SalidasConcurrentes(t *testing.T) {
	f := newFixture(t)
	itemID := f.item(t, "concurrente", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Create(context.Background(), admin,
				createInput(fmt.Sprintf("TX-C%d", i), entity.TransactionTypeOut, line(itemID, 4)))
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.stock(t, itemID))
}

// Secuencia aleatoria sin recortes: stock == inicial + Σ líneas con signo.
func TestLedger_InvarianteDeConciliacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	initial := map[string]int{}
	var items []string
	for i := 0; i < 3; i++ {
		id := f.item(t, fmt.Sprintf("inv-%d", i), 5)
		initial[id] = 5
		items = append(items, id)
	}

	var ins, outs []string
	for step := 0; step < 60; step++ {
		itemID := items[rng.Intn(len(items))]
		switch rng.Intn(4) {
		case 0:
			out, err := f.uc.Create(ctx, admin, createInput(fmt.Sprintf("IN-%d", step), entity.TransactionTypeIn, line(itemID, 1+rng.Intn(5))))
			require.NoError(t, err)
			ins = append(ins, out.ID)
		case 1:
			out, err := f.uc.Create(ctx, admin, createInput(fmt.Sprintf("OUT-%d", step), entity.TransactionTypeOut, line(itemID, 1+rng.Intn(5))))
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				continue
			}
			outs = append(outs, out.ID)
		case 2:
			if len(ins) == 0 {
				continue
			}
			id := ins[rng.Intn(len(ins))]
			cur, err := f.uc.GetByID(ctx, id)
			require.NoError(t, err)
			li := cur.Items[0]
			lines := []ledger.LineInput{{ID: li.ID, ItemID: li.ItemID, Quantity: li.Quantity + rng.Intn(3)}}
			_, err = f.uc.Update(ctx, admin, id, ledger.UpdateInput{ReplaceLines: true, Lines: lines})
			require.NoError(t, err)
		case 3:
			if len(outs) == 0 {
				continue
			}
			idx := rng.Intn(len(outs))
			require.NoError(t, f.uc.Delete(ctx, admin, outs[idx]))
			outs = append(outs[:idx], outs[idx+1:]...)
		}
	}

	all, err := f.uc.List(ctx, 1000, 0)
	require.NoError(t, err)
	sum := map[string]int{}
	for _, tx := range all.Items {
		sign := entity.SignFor(tx.Type)
		for _, li := range tx.Items {
			sum[li.ItemID] += sign * li.Quantity
		}
	}
	for _, id := range items {
		assert.Equal(t, initial[id]+sum[id], f.stock(t, id), "ítem %s", id)
		assert.GreaterOrEqual(t, f.stock(t, id), 0)
	}
}
