package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/utils"
)

// PlayerIDKey is the fiber.Ctx local holding the caller's player id.
const PlayerIDKey = "playerID"

const maxPlayerIDLen = 64

// EnsurePlayerID identifies the caller by the X-Player-ID header, falling
// back to the playerId query parameter that browsers can set on a websocket URL.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(PlayerIDKey) != nil {
			return c.Next()
		}

		playerID := strings.TrimSpace(c.Get("X-Player-ID"))
		if playerID == "" {
			playerID = strings.TrimSpace(c.Query("playerId"))
		}

		switch {
		case playerID == "":
			log.Debugf("rejecting %s %s without player id", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		case len(playerID) > maxPlayerIDLen || strings.ContainsAny(playerID, " \t\r\n"):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed player ID",
			})
		}

		// Header and query values alias the pooled request buffer, and the id
		// outlives the request as a seat and connection key.
		c.Locals(PlayerIDKey, utils.CopyString(playerID))
		return c.Next()
	}
}

// PlayerID returns the id stored by EnsurePlayerID.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}
