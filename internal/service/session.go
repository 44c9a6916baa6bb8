package service

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/notation"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type ClientPlayer struct {
	ID       string      `json:"id"`
	Color    model.Color `json:"color"`
	TimeLeft int         `json:"timeLeft"` // seconds
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// GameView is what clients render: the rules state plus seats, clocks and
// the moves in standard notation.
type GameView struct {
	ID string `json:"gameId"`
	model.GameState
	Players Players  `json:"players"`
	SAN     []string `json:"san"`
}

// Session is one hosted game with its seats and observers. mu serialises
// selections so each one completes before the next starts.
type Session struct {
	ID       string
	mu       sync.Mutex
	game     *model.Game
	seats    map[model.Color]string
	clocks   map[model.Color]*Clock
	recorder *notation.Recorder
	conns    map[string]Conn // playerID -> connection
}

func newSession(id string, game *model.Game, recorder *notation.Recorder, clock time.Duration) *Session {
	return &Session{
		ID:       id,
		game:     game,
		seats:    map[model.Color]string{model.White: "", model.Black: ""},
		clocks:   map[model.Color]*Clock{model.White: NewClock(clock), model.Black: NewClock(clock)},
		recorder: recorder,
		conns:    make(map[string]Conn),
	}
}

// seat assigns playerID the first free colour. Taking a seat twice returns
// the same colour.
func (s *Session) seat(playerID string) (model.Color, bool, error) {
	if color, ok := s.colorOf(playerID); ok {
		return color, false, nil
	}
	for _, color := range []model.Color{model.White, model.Black} {
		if s.seats[color] == "" {
			s.seats[color] = playerID
			return color, true, nil
		}
	}
	return "", false, ErrGameFull
}

func (s *Session) colorOf(playerID string) (model.Color, bool) {
	for _, color := range []model.Color{model.White, model.Black} {
		if s.seats[color] != "" && s.seats[color] == playerID {
			return color, true
		}
	}
	return "", false
}

func (s *Session) seated() bool {
	return s.seats[model.White] != "" && s.seats[model.Black] != ""
}

// startClock runs the clock of the side to move once both players are seated.
func (s *Session) startClock() {
	if !s.seated() || s.game.Result() != model.ResultOngoing {
		return
	}
	s.clocks[s.game.ToMove().Opponent()].Stop()
	s.clocks[s.game.ToMove()].Start()
}

func (s *Session) stopClocks() {
	for _, c := range s.clocks {
		c.Stop()
	}
}

func (s *Session) view() GameView {
	v := GameView{
		ID:        s.ID,
		GameState: s.game.State(),
		SAN:       s.recorder.SAN(),
	}
	v.Players.White = ClientPlayer{ID: s.seats[model.White], Color: model.White, TimeLeft: int(s.clocks[model.White].TimeLeft().Seconds())}
	v.Players.Black = ClientPlayer{ID: s.seats[model.Black], Color: model.Black, TimeLeft: int(s.clocks[model.Black].TimeLeft().Seconds())}
	return v
}

func (s *Session) register(playerID string, conn Conn) error {
	if _, exists := s.conns[playerID]; exists {
		if err := conn.WriteJSON(ws.NewError(ErrConnectionExists.Error())); err != nil {
			log.Warnf("failed to refuse second connection of player %s: %v", playerID, err)
		}
		if err := conn.Close(); err != nil {
			log.Warnf("failed to close second connection of player %s: %v", playerID, err)
		}
		return ErrConnectionExists
	}
	s.conns[playerID] = conn
	log.Debugf("registered connection for player %s in game %s", playerID, s.ID)
	s.send(conn, playerID, ws.MessageTypeGameState, s.view())
	return nil
}

// unregister drops playerID's connection if it is still conn.
func (s *Session) unregister(playerID string, conn Conn) {
	if current, exists := s.conns[playerID]; exists && current == conn {
		delete(s.conns, playerID)
		log.Debugf("unregistered connection for player %s in game %s", playerID, s.ID)
	}
}

func (s *Session) broadcast(t ws.MessageType, payload interface{}) {
	for playerID, conn := range s.conns {
		s.send(conn, playerID, t, payload)
	}
}

func (s *Session) send(conn Conn, playerID string, t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Errorf("failed to marshal %s for game %s: %v", t, s.ID, err)
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Warnf("failed to send %s to player %s: %v", t, playerID, err)
		delete(s.conns, playerID)
	}
}
