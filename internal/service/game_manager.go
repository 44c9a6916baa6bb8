package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chessrules-backend/internal/archive"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/notation"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

// MoveArchive is the durable move log. *archive.Archive implements it.
type MoveArchive interface {
	CreateGame(ctx context.Context, gameID, initialFEN string) error
	SetPlayer(ctx context.Context, gameID string, color model.Color, playerID string) error
	AppendMove(ctx context.Context, gameID string, m model.MoveRecord, san, fenAfter string) error
	FinishGame(ctx context.Context, gameID string, result model.Result) error
	Game(ctx context.Context, gameID string) (archive.Game, error)
	Moves(ctx context.Context, gameID string) ([]archive.Move, error)
}

// SnapshotStore keeps resumable games; finished games are removed from it. *storage.Store implements it.
type SnapshotStore interface {
	SaveGame(id string, snap storage.Snapshot) error
	LoadGame(id string) (storage.Snapshot, bool, error)
	DeleteGame(id string) error
	ListGames() ([]string, error)
}

type Options struct {
	// Archive and Snapshots may be nil to disable them.
	Archive   MoveArchive
	Snapshots SnapshotStore
	Clock     time.Duration
}

type GameManager struct {
	games     map[string]*Session
	archive   MoveArchive
	snapshots SnapshotStore
	clock     time.Duration
	mu        sync.RWMutex
}

func NewGameManager(opts Options) *GameManager {
	if opts.Clock <= 0 {
		opts.Clock = 600 * time.Second
	}
	return &GameManager{
		games:     make(map[string]*Session),
		archive:   opts.Archive,
		snapshots: opts.Snapshots,
		clock:     opts.Clock,
	}
}

// Restore loads every stored snapshot into a session. Clocks restart full.
func (gm *GameManager) Restore() (int, error) {
	if gm.snapshots == nil {
		return 0, nil
	}
	ids, err := gm.snapshots.ListGames()
	if err != nil {
		return 0, fmt.Errorf("listing snapshots: %w", err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	restored := 0
	for _, id := range ids {
		snap, found, err := gm.snapshots.LoadGame(id)
		if err != nil || !found {
			log.Warnf("skipping snapshot %s: found=%t err=%v", id, found, err)
			continue
		}
		game, err := model.RestoreGame(snap.Record)
		if err != nil {
			log.Warnf("skipping snapshot %s: %v", id, err)
			continue
		}
		recorder, err := notation.Replay(game.StartFEN(), game.History())
		if err != nil {
			log.Warnf("skipping snapshot %s: %v", id, err)
			continue
		}
		s := newSession(id, game, recorder, gm.clock)
		s.seats[model.White] = snap.WhiteID
		s.seats[model.Black] = snap.BlackID
		s.startClock()
		gm.games[id] = s
		restored++
	}
	log.Infof("restored %d of %d stored games", restored, len(ids))
	return restored, nil
}

// CreateGame starts a game from the standard position, or from fen if it is
// not empty.
func (gm *GameManager) CreateGame(fen string) (string, error) {
	game := model.NewGame()
	if fen != "" {
		var err error
		if game, err = model.ParseFEN(fen); err != nil {
			return "", err
		}
	}
	recorder, err := notation.NewRecorder(game.StartFEN())
	if err != nil {
		return "", err
	}

	gameID := uuid.New().String()
	s := newSession(gameID, game, recorder, gm.clock)

	gm.mu.Lock()
	gm.games[gameID] = s
	gm.mu.Unlock()

	if gm.archive != nil {
		if err := gm.archive.CreateGame(context.Background(), gameID, game.StartFEN()); err != nil {
			log.Errorf("archive: %v", err)
		}
	}
	s.mu.Lock()
	gm.saveSnapshot(s)
	s.mu.Unlock()
	log.Infof("created game %s from %s", gameID, game.StartFEN())
	return gameID, nil
}

func (gm *GameManager) session(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	return s, nil
}

// AddPlayerToGame seats playerID in the game and returns the colour.
func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	color, added, err := s.seat(playerID)
	if err != nil || !added {
		return color, err
	}
	log.Infof("player %s joined game %s as %s", playerID, gameID, color)

	if gm.archive != nil {
		if err := gm.archive.SetPlayer(context.Background(), gameID, color, playerID); err != nil {
			log.Errorf("archive: %v", err)
		}
	}
	gm.saveSnapshot(s)
	s.startClock()
	s.broadcast(ws.MessageTypeGameState, s.view())
	return color, nil
}

func (gm *GameManager) GetGameState(gameID string) (GameView, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Select feeds one square selection of playerID into the game.
func (gm *GameManager) Select(gameID, playerID string, row, col int) (model.TurnEvent, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return model.TurnEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	color, ok := s.colorOf(playerID)
	if !ok {
		return model.TurnEvent{}, ErrNotSeated
	}
	if color != s.game.ToMove() && s.game.Result() == model.ResultOngoing {
		return model.TurnEvent{}, ErrNotYourTurn
	}

	ev, err := s.game.HandleSelection(row, col)
	if err != nil {
		return model.TurnEvent{}, err
	}
	if ev.Committed {
		gm.afterCommit(s, *ev.Move)
	}

	s.broadcast(ws.MessageTypeTurn, ev)
	s.broadcast(ws.MessageTypeGameState, s.view())
	return ev, nil
}

func (gm *GameManager) afterCommit(s *Session, move model.MoveRecord) {
	san, err := s.recorder.Record(move)
	if err != nil {
		log.Warnf("notation for game %s: %v", s.ID, err)
	} else {
		gm.crossCheck(s)
	}

	if s.game.Result() != model.ResultOngoing {
		s.stopClocks()
	} else {
		s.startClock()
	}

	ctx := context.Background()
	if gm.archive != nil {
		if err := gm.archive.AppendMove(ctx, s.ID, move, san, s.game.FEN()); err != nil {
			log.Errorf("archive: %v", err)
		}
		if result := s.game.Result(); result != model.ResultOngoing {
			if err := gm.archive.FinishGame(ctx, s.ID, result); err != nil {
				log.Errorf("archive: %v", err)
			}
		}
	}

	if result := s.game.Result(); result != model.ResultOngoing {
		gm.dropSnapshot(s)
		log.Infof("game %s finished %s", s.ID, result)
		return
	}
	gm.saveSnapshot(s)
}

// crossCheck compares the rules game with the notation game after a commit.
func (gm *GameManager) crossCheck(s *Session) {
	rulesFEN, notationFEN := strings.Fields(s.game.FEN()), strings.Fields(s.recorder.FEN())
	if len(notationFEN) == 0 || rulesFEN[0] != notationFEN[0] {
		log.Warnf("game %s: placement %s differs from notation %s", s.ID, rulesFEN[0], s.recorder.FEN())
	}
	if got, want := s.recorder.Result(), s.game.Result(); got != want {
		log.Warnf("game %s: result %q differs from notation %q", s.ID, want, got)
	}
}

func (gm *GameManager) dropSnapshot(s *Session) {
	if gm.snapshots == nil {
		return
	}
	if err := gm.snapshots.DeleteGame(s.ID); err != nil {
		log.Errorf("dropping snapshot of game %s: %v", s.ID, err)
	}
}

func (gm *GameManager) saveSnapshot(s *Session) {
	if gm.snapshots == nil {
		return
	}
	snap := storage.Snapshot{
		Record:  s.game.Record(),
		WhiteID: s.seats[model.White],
		BlackID: s.seats[model.Black],
	}
	if err := gm.snapshots.SaveGame(s.ID, snap); err != nil {
		log.Errorf("snapshot of game %s: %v", s.ID, err)
	}
}

func (gm *GameManager) PGN(gameID string) (string, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.PGN(), nil
}

// Moves returns the archived plies of a game.
func (gm *GameManager) Moves(ctx context.Context, gameID string) ([]archive.Move, error) {
	if _, err := gm.session(gameID); err != nil {
		return nil, err
	}
	if gm.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return gm.archive.Moves(ctx, gameID)
}

// ArchivedGame returns the archived summary row of a game.
func (gm *GameManager) ArchivedGame(ctx context.Context, gameID string) (archive.Game, error) {
	if _, err := gm.session(gameID); err != nil {
		return archive.Game{}, err
	}
	if gm.archive == nil {
		return archive.Game{}, ErrArchiveDisabled
	}
	return gm.archive.Game(ctx, gameID)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn Conn) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn Conn) {
	s, err := gm.session(gameID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregister(playerID, conn)
}
