package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// wsUpgrade exige la cabecera de upgrade, un token válido en ?token= (los navegadores
// no envían Authorization en el handshake) y permiso para ver ítems.
func wsUpgrade(tokens *jwt.Signer, gate ports.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		sub, err := tokens.Verify(c.Query("token"))
		if err != nil {
			return tokenError(c, err)
		}
		setSubject(c, sub)
		if !gate.Can(GetActor(c), authz.ActionView, authz.ResourceItem) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso requerido: view_item"})
		}
		return c.Next()
	}
}

// stockFeed registra la conexión en el hub y la mantiene hasta que el cliente cierre.
func stockFeed(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if !hub.Register(c) {
			return
		}
		defer hub.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
