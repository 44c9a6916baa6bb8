package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chessrules-backend/internal/archive"
	"github.com/benbeisheim/chessrules-backend/internal/middleware"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

// errorStatus maps service and rules errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, archive.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotSeated):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrGameFull), errors.Is(err, service.ErrNotYourTurn):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrOutOfRange), errors.Is(err, model.ErrInvalidPosition):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrArchiveDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(gameState)
}

// Select handles one square selection: {"row": r, "col": c}.
func (gc *GameController) Select(c *fiber.Ctx) error {
	var sel ws.Selection
	if err := c.BodyParser(&sel); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid selection",
		})
	}

	ev, err := gc.gameService.HandleSelection(c.Params("gameId"), middleware.PlayerID(c), sel.Row, sel.Col)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(ev)
}

func (gc *GameController) PGN(c *fiber.Ctx) error {
	pgn, err := gc.gameService.PGN(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
	return c.SendString(pgn)
}

func (gc *GameController) Moves(c *fiber.Ctx) error {
	moves, err := gc.gameService.Moves(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(moves)
}

// ArchivedGame returns the game's row from the move archive.
func (gc *GameController) ArchivedGame(c *fiber.Ctx) error {
	summary, err := gc.gameService.ArchivedGame(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(summary)
}
