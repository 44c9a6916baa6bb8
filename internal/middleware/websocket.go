package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade only lets genuine upgrade requests for a known game
// through. exists reports whether a game id is hosted; it runs before the
// handshake so unknown games get a plain 404 instead of a closed socket.
func WebSocketUpgrade(exists func(gameID string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// This would have been set by EnsurePlayerID
		if c.Locals(PlayerIDKey) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		gameID := c.Params("gameId")
		if gameID == "" || !exists(gameID) {
			log.Debugf("refusing websocket for unknown game %q", gameID)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "game not found",
			})
		}

		return c.Next()
	}
}
