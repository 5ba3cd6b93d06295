package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	gate := authz.NewRoleGate()
	recorder := audit.NewRecorder(store.Activities(), logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(store.Users(), recorder, testTokens),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories(), store.Items(), gate, recorder),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers(), store.Items(), gate, recorder),
		ItemUC: usecase.NewItemUseCase(store.Items(), store.Categories(), store.Suppliers(),
			store.Transactions(), gate, recorder),
		LowStockUC: inventory.NewLowStockUseCase(store.Items()),
		LedgerUC: ledger.NewLedgerUseCase(ledger.Deps{
			TxRunner: store.TxRunner(),
			TxRepo:   store.Transactions(),
			Gate:     gate,
			Recorder: recorder,
		}),
		DashboardUC: analytics.NewDashboardUseCase(store.Stats(), store.Categories(), store.Suppliers()),
		Gate:        gate,
		Tokens:      testTokens,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) item(t *testing.T, stock int) string {
	t.Helper()
	now := time.Now()
	it := &entity.Item{
		ID:        uuid.New().String(),
		Name:      "Cable UTP",
		SKU:       "SKU-" + uuid.NewString()[:8],
		Price:     decimal.NewFromInt(1200),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it.ID
}

func (f *apiFixture) stock(t *testing.T, id string) int {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return it.Stock
}

func (f *apiFixture) send(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func txBody(no, typ, itemID string, qty int) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		TransactionNo: no,
		Date:          "2026-05-01",
		Type:          typ,
		Items: []dto.TransactionLineRequest{
			{ItemID: itemID, Quantity: qty, Price: price(1500)},
		},
	}
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransactions_CrearSalidaDescuentaStock(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), txBody("TX-1", "out", itemID, 4))
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "TX-1", out.TransactionNo)
	assert.Equal(t, "2026-05-01", out.Date)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, 6, f.stock(t, itemID))

	get := f.send(t, http.MethodGet, "/api/transactions/"+out.ID, tokenForRole(t, "user"), nil)
	assert.Equal(t, http.StatusOK, get.StatusCode)
	get.Body.Close()
}

func TestTransactions_StockInsuficiente422(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 2)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), txBody("TX-2", "out", itemID, 5))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Errors, "items")
	assert.Equal(t, 2, f.stock(t, itemID))
}

func TestTransactions_UserSinPermisoDeSalida403(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "user"), txBody("TX-3", "out", itemID, 1))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 10, f.stock(t, itemID))
}

func TestTransactions_ValidacionPorCampo(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	body := txBody("TX-4", "out", itemID, 0)
	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Errors, "items.0.quantity")
}

func TestTransactions_PrecioObligatorio(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	body := map[string]interface{}{
		"transaction_no": "TX-P",
		"date":           "2026-05-01",
		"type":           "in",
		"items":          []map[string]interface{}{{"item_id": itemID, "quantity": 2}},
	}
	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Errors, "items.0.price")
	assert.Equal(t, 10, f.stock(t, itemID))
}

func TestTransactions_CantidadFueraDeRango(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), txBody("TX-Q", "in", itemID, math.MaxInt))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decodeError(t, resp)
	assert.Contains(t, out.Errors, "items.0.quantity")
	assert.Equal(t, 10, f.stock(t, itemID))
}

func TestTransactions_IdentificadoresMalformados(t *testing.T) {
	f := newAPI(t)
	admin := tokenForRole(t, "admin")

	resp := f.send(t, http.MethodPost, "/api/transactions", admin, txBody("TX-U", "in", "abc", 1))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, []string{"debe ser un UUID válido"}, out.Errors["items.0.item_id"])

	for _, path := range []string{"/api/items/abc", "/api/transactions/abc", "/api/categories/abc"} {
		get := f.send(t, http.MethodGet, path, admin, nil)
		assert.Equal(t, http.StatusNotFound, get.StatusCode, path)
		get.Body.Close()
	}
}

func TestTransactions_ForbiddenAntesDeBuscar(t *testing.T) {
	f := newAPI(t)

	// El gate corre antes de buscar la transacción: 403 aunque el id no exista.
	resp := f.send(t, http.MethodDelete, "/api/transactions/"+uuid.NewString(), tokenForRole(t, "user"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestTransactions_BorrarRevierteYNoEncontrado(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 3)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), txBody("TX-5", "in", itemID, 7))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, 10, f.stock(t, itemID))

	del := f.send(t, http.MethodDelete, "/api/transactions/"+out.ID, tokenForRole(t, "admin"), nil)
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
	del.Body.Close()
	assert.Equal(t, 3, f.stock(t, itemID))

	again := f.send(t, http.MethodDelete, "/api/transactions/"+out.ID, tokenForRole(t, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
	again.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y rutas auxiliares
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DevuelveToken(t *testing.T) {
	f := newAPI(t)
	hash, err := auth.HashPassword("secreto123")
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, f.store.Users().Create(context.Background(), &entity.User{
		ID: uuid.NewString(), Email: "ana@bodega.co", PasswordHash: hash, Name: "Ana",
		Role: entity.RoleAdmin, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}))

	resp := f.send(t, http.MethodPost, "/api/login", "", dto.LoginRequest{Email: "ana@bodega.co", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.NotEmpty(t, out.Token)

	me := f.send(t, http.MethodGet, "/api/user", "Bearer "+out.Token, nil)
	assert.Equal(t, http.StatusOK, me.StatusCode)
	me.Body.Close()

	bad := f.send(t, http.MethodPost, "/api/login", "", dto.LoginRequest{Email: "ana@bodega.co", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)
	bad.Body.Close()
}

func TestItems_LowStockNoChocaConID(t *testing.T) {
	f := newAPI(t)
	f.item(t, 2)
	f.item(t, 50)

	resp := f.send(t, http.MethodGet, "/api/items/low-stock", tokenForRole(t, "user"), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []dto.ItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Stock)
}

func TestDashboard_Movement30Dias(t *testing.T) {
	f := newAPI(t)

	resp := f.send(t, http.MethodGet, "/api/dashboard/movement", tokenForRole(t, "user"), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.MovementChartDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Points, 30)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.SecurityHeaders())
	app.Get("/api/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.NotEmpty(t, resp.Header.Get("Strict-Transport-Security"))
}

func TestTransactions_PatchSoloMetadatos(t *testing.T) {
	f := newAPI(t)
	itemID := f.item(t, 10)

	resp := f.send(t, http.MethodPost, "/api/transactions", tokenForRole(t, "admin"), txBody("TX-6", "out", itemID, 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	notes := "entregado en bodega norte"
	patch := f.send(t, http.MethodPatch, "/api/transactions/"+created.ID, tokenForRole(t, "admin"),
		dto.UpdateTransactionRequest{Notes: &notes})
	defer patch.Body.Close()
	require.Equal(t, http.StatusOK, patch.StatusCode)

	var out dto.TransactionResponse
	require.NoError(t, json.NewDecoder(patch.Body).Decode(&out))
	assert.Equal(t, notes, out.Notes)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 8, f.stock(t, itemID))
}

func TestCORS_PreflightPatch(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.CORS("https://panel.inventario.co"))
	app.Patch("/api/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/items/1", nil)
	req.Header.Set("Origin", "https://panel.inventario.co")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.Equal(t, "https://panel.inventario.co", resp.Header.Get("Access-Control-Allow-Origin"))
}
