package service

import (
	"context"

	"github.com/benbeisheim/chessrules-backend/internal/archive"
	"github.com/benbeisheim/chessrules-backend/internal/model"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

// CreateGame hosts a new game; fen may be empty for the standard start.
func (gs *GameService) CreateGame(fen string) (string, error) {
	return gs.gameManager.CreateGame(fen)
}

// Exists reports whether gameID is hosted.
func (gs *GameService) Exists(gameID string) bool {
	_, err := gs.gameManager.session(gameID)
	return err == nil
}

func (gs *GameService) GetGameState(gameID string) (GameView, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleSelection(gameID string, playerID string, row, col int) (model.TurnEvent, error) {
	return gs.gameManager.Select(gameID, playerID, row, col)
}

func (gs *GameService) PGN(gameID string) (string, error) {
	return gs.gameManager.PGN(gameID)
}

func (gs *GameService) Moves(ctx context.Context, gameID string) ([]archive.Move, error) {
	return gs.gameManager.Moves(ctx, gameID)
}

func (gs *GameService) ArchivedGame(ctx context.Context, gameID string) (archive.Game, error) {
	return gs.gameManager.ArchivedGame(ctx, gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
