package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/archive"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
	"github.com/benbeisheim/chessrules-backend/internal/testutil"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

type fakeConn struct {
	msgs   []ws.Message
	closed bool
	fail   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) types() []ws.MessageType {
	out := []ws.MessageType{}
	for _, m := range c.msgs {
		out = append(out, m.Type)
	}
	return out
}

func newTestManager(t *testing.T) (*GameManager, *archive.Archive, *storage.Store) {
	t.Helper()
	a, err := archive.Open(filepath.Join(t.TempDir(), "chess.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { a.Close() })
	st, err := storage.OpenInMemory()
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewGameManager(Options{Archive: a, Snapshots: st, Clock: time.Minute}), a, st
}

// seatedGame creates a game with alice as White and bob as Black.
func seatedGame(t *testing.T, gm *GameManager) string {
	t.Helper()
	id, err := gm.CreateGame("")
	testutil.AssertNoError(t, err)
	for _, player := range []string{"alice", "bob"} {
		_, err := gm.AddPlayerToGame(id, player)
		testutil.AssertNoError(t, err)
	}
	return id
}

func selectAt(t *testing.T, gm *GameManager, id, player, square string) model.TurnEvent {
	t.Helper()
	ev, err := gm.Select(id, player, 8-int(square[1]-'0'), int(square[0]-'a'))
	testutil.AssertNoError(t, err, "%s selects %s", player, square)
	return ev
}

func playMoves(t *testing.T, gm *GameManager, id string, moves ...string) {
	t.Helper()
	players := map[model.Color]string{model.White: "alice", model.Black: "bob"}
	for _, uci := range moves {
		state, err := gm.GetGameState(id)
		testutil.AssertNoError(t, err)
		player := players[state.ToMove]
		selectAt(t, gm, id, player, uci[:2])
		if ev := selectAt(t, gm, id, player, uci[2:]); !ev.Committed {
			t.Fatalf("%s rejected: %q", uci, ev.Rejection)
		}
	}
}

func TestJoinGame(t *testing.T) {
	gm, a, _ := newTestManager(t)
	id, err := gm.CreateGame("")
	testutil.AssertNoError(t, err)

	tests := []struct {
		player string
		want   model.Color
		err    error
	}{
		{"alice", model.White, nil},
		{"alice", model.White, nil},
		{"bob", model.Black, nil},
		{"carol", "", ErrGameFull},
	}
	for _, tt := range tests {
		color, err := gm.AddPlayerToGame(id, tt.player)
		if tt.err != nil {
			testutil.AssertErrorIs(t, err, tt.err)
			continue
		}
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, color, tt.want, tt.player)
	}

	_, err = gm.AddPlayerToGame("missing", "alice")
	testutil.AssertErrorIs(t, err, ErrGameNotFound)

	rec, err := a.Game(context.Background(), id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.WhiteID, "alice")
	testutil.AssertEqual(t, rec.BlackID, "bob")

	view, err := gm.GetGameState(id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, view.Players.White.ID, "alice")
	testutil.AssertEqual(t, view.Players.Black.ID, "bob")
	testutil.AssertEqual(t, view.Players.Black.TimeLeft, 60)
}

func TestSelectChecksSeatAndTurn(t *testing.T) {
	gm, _, _ := newTestManager(t)
	id := seatedGame(t, gm)

	_, err := gm.Select(id, "carol", 6, 4)
	testutil.AssertErrorIs(t, err, ErrNotSeated)
	_, err = gm.Select(id, "bob", 1, 4)
	testutil.AssertErrorIs(t, err, ErrNotYourTurn)
	_, err = gm.Select(id, "alice", 6, 9)
	testutil.AssertErrorIs(t, err, model.ErrOutOfRange)
	_, err = gm.Select("missing", "alice", 6, 4)
	testutil.AssertErrorIs(t, err, ErrGameNotFound)

	ev := selectAt(t, gm, id, "alice", "e7")
	testutil.AssertEqual(t, ev.Rejection, model.RejectEnemyPiece)

	s, err := gm.session(id)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, s.clocks[model.White].Running())
	testutil.AssertFalse(t, s.clocks[model.Black].Running())

	playMoves(t, gm, id, "e2e4")
	testutil.AssertFalse(t, s.clocks[model.White].Running())
	testutil.AssertTrue(t, s.clocks[model.Black].Running())

	_, err = gm.Select(id, "alice", 6, 3)
	testutil.AssertErrorIs(t, err, ErrNotYourTurn)
}

func TestFinishedGameIsArchived(t *testing.T) {
	gm, _, st := newTestManager(t)
	id := seatedGame(t, gm)
	playMoves(t, gm, id, "f2f3", "e7e5", "g2g4", "d8h4")

	view, err := gm.GetGameState(id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, view.Result, model.ResultBlackWins)
	testutil.AssertTrue(t, view.CheckmateWhite)
	testutil.AssertEqual(t, view.SAN, []string{"f3", "e5", "g4", "Qh4#"})

	moves, err := gm.Moves(context.Background(), id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 4)
	testutil.AssertEqual(t, moves[3].SAN, "Qh4#")
	testutil.AssertEqual(t, moves[3].Color, model.Black)
	testutil.AssertEqual(t, moves[3].FENAfter, view.FEN)

	s, err := gm.session(id)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, s.clocks[model.White].Running())
	testutil.AssertFalse(t, s.clocks[model.Black].Running())

	for _, player := range []string{"alice", "bob"} {
		ev := selectAt(t, gm, id, player, "e2")
		testutil.AssertEqual(t, ev.Rejection, model.RejectGameOver)
	}

	_, found, err := st.LoadGame(id)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, found, "finished game still has a snapshot")

	summary, err := gm.ArchivedGame(context.Background(), id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, summary.Result, model.ResultBlackWins)
	testutil.AssertEqual(t, summary.WhiteID, "alice")
	testutil.AssertEqual(t, summary.BlackID, "bob")

	fresh := NewGameManager(Options{Snapshots: st})
	n, err := fresh.Restore()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 0)

	pgn, err := gm.PGN(id)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, len(pgn) > 0)
}

func TestCreateGameFromFEN(t *testing.T) {
	gm, _, _ := newTestManager(t)

	_, err := gm.CreateGame("8/8/8/8/8/8/8/8 w - - 0 1")
	testutil.AssertErrorIs(t, err, model.ErrInvalidPosition)

	id, err := gm.CreateGame("4k3/8/8/8/8/8/8/R3K3 w Q - 0 1")
	testutil.AssertNoError(t, err)
	for _, player := range []string{"alice", "bob"} {
		_, err := gm.AddPlayerToGame(id, player)
		testutil.AssertNoError(t, err)
	}
	playMoves(t, gm, id, "e1c1")

	view, err := gm.GetGameState(id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, view.SAN, []string{"O-O-O"})
	testutil.AssertEqual(t, view.FEN, "4k3/8/8/8/8/8/8/2KR4 b - - 1 1")
}

func TestBroadcasts(t *testing.T) {
	gm, _, _ := newTestManager(t)
	id := seatedGame(t, gm)

	alice, spectator, broken := &fakeConn{}, &fakeConn{}, &fakeConn{fail: true}
	testutil.AssertNoError(t, gm.RegisterConnection(id, "alice", alice))
	testutil.AssertNoError(t, gm.RegisterConnection(id, "spectator", spectator))
	testutil.AssertNoError(t, gm.RegisterConnection(id, "broken", broken))
	testutil.AssertEqual(t, alice.types(), []ws.MessageType{ws.MessageTypeGameState})

	dup := &fakeConn{}
	testutil.AssertErrorIs(t, gm.RegisterConnection(id, "alice", dup), ErrConnectionExists)
	testutil.AssertTrue(t, dup.closed)
	testutil.AssertEqual(t, dup.types(), []ws.MessageType{ws.MessageTypeError})
	deadDup := &fakeConn{fail: true}
	testutil.AssertErrorIs(t, gm.RegisterConnection(id, "alice", deadDup), ErrConnectionExists)
	testutil.AssertTrue(t, deadDup.closed, "second connection closed even when the refusal cannot be sent")

	playMoves(t, gm, id, "e2e4")
	want := []ws.MessageType{
		ws.MessageTypeGameState,
		ws.MessageTypeTurn, ws.MessageTypeGameState,
		ws.MessageTypeTurn, ws.MessageTypeGameState,
	}
	testutil.AssertEqual(t, alice.types(), want)
	testutil.AssertEqual(t, spectator.types(), want)

	var ev model.TurnEvent
	testutil.AssertNoError(t, json.Unmarshal(spectator.msgs[3].Payload, &ev))
	testutil.AssertTrue(t, ev.Committed)
	testutil.AssertEqual(t, ev.Move.UCI(), "e2e4")

	s, err := gm.session(id)
	testutil.AssertNoError(t, err)
	_, stillThere := s.conns["broken"]
	testutil.AssertFalse(t, stillThere, "failing connection kept")

	gm.UnregisterConnection(id, "alice", dup)
	_, stillThere = s.conns["alice"]
	testutil.AssertTrue(t, stillThere, "unregistering a stale connection removed the live one")
	gm.UnregisterConnection(id, "alice", alice)
	_, stillThere = s.conns["alice"]
	testutil.AssertFalse(t, stillThere)
}

func TestRestoreFromSnapshots(t *testing.T) {
	gm, a, st := newTestManager(t)
	id := seatedGame(t, gm)
	playMoves(t, gm, id, "e2e4", "d7d5", "e4d5")
	before, err := gm.GetGameState(id)
	testutil.AssertNoError(t, err)

	fresh := NewGameManager(Options{Archive: a, Snapshots: st, Clock: time.Minute})
	n, err := fresh.Restore()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)

	after, err := fresh.GetGameState(id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, after.FEN, before.FEN)
	testutil.AssertEqual(t, after.SAN, []string{"e4", "d5", "exd5"})
	testutil.AssertEqual(t, after.MoveHistory, before.MoveHistory)
	testutil.AssertEqual(t, after.Players.Black.ID, "bob")

	s, err := fresh.session(id)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, s.clocks[model.Black].Running(), "clock of the side to move")
	testutil.AssertFalse(t, s.clocks[model.White].Running())

	playMoves(t, fresh, id, "d8d5")
	moves, err := fresh.Moves(context.Background(), id)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 4)
}

func TestWithoutStores(t *testing.T) {
	gm := NewGameManager(Options{})
	id := seatedGame(t, gm)
	playMoves(t, gm, id, "e2e4")

	_, err := gm.Moves(context.Background(), id)
	testutil.AssertErrorIs(t, err, ErrArchiveDisabled)
	_, err = gm.ArchivedGame(context.Background(), id)
	testutil.AssertErrorIs(t, err, ErrArchiveDisabled)
	n, err := gm.Restore()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, gm.clock, 600*time.Second)
}
