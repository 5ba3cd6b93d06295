package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func wsTestApp(t *testing.T) (*fiber.App, *jwt.Signer) {
	t.Helper()
	tokens, err := jwt.NewSigner("ws-secret", "test", time.Hour)
	require.NoError(t, err)
	app := fiber.New()
	app.Get("/ws/stock", wsUpgrade(tokens, authz.NewRoleGate()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, tokens
}

func wsRequest(t *testing.T, app *fiber.App, token string, upgrade bool) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ws/stock?token="+token, nil)
	if upgrade {
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestWsUpgrade_ExigePermisoDeVerItems(t *testing.T) {
	app, tokens := wsTestApp(t)
	issue := func(role string) string {
		tok, _, err := tokens.Issue(jwt.Subject{UserID: "u-1", Name: "Ana", Role: role})
		require.NoError(t, err)
		return tok
	}

	assert.Equal(t, http.StatusNoContent, wsRequest(t, app, issue("user"), true))
	assert.Equal(t, http.StatusNoContent, wsRequest(t, app, issue("admin"), true))
	assert.Equal(t, http.StatusForbidden, wsRequest(t, app, issue("invitado"), true))
	assert.Equal(t, http.StatusForbidden, wsRequest(t, app, issue(""), true))
}

func TestWsUpgrade_TokenYCabeceras(t *testing.T) {
	app, _ := wsTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, wsRequest(t, app, "basura", true))
	assert.Equal(t, http.StatusUpgradeRequired, wsRequest(t, app, "basura", false))
}
