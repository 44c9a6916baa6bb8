package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/testutil"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "chess.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { a.Close() })

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	return a
}

func TestCreateAndReadGame(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	testutil.AssertNoError(t, a.CreateGame(ctx, "g1", model.InitialFEN))
	testutil.AssertNoError(t, a.CreateGame(ctx, "g1", "ignored"))
	testutil.AssertNoError(t, a.SetPlayer(ctx, "g1", model.White, "alice"))
	testutil.AssertNoError(t, a.SetPlayer(ctx, "g1", model.Black, "bob"))

	g, err := a.Game(ctx, "g1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, g.ID, "g1")
	testutil.AssertEqual(t, g.InitialFEN, model.InitialFEN)
	testutil.AssertEqual(t, g.WhiteID, "alice")
	testutil.AssertEqual(t, g.BlackID, "bob")
	testutil.AssertEqual(t, g.Result, model.ResultOngoing)
	testutil.AssertTrue(t, g.StartedAt.Equal(a.now()), "started at %v", g.StartedAt)
}

func TestUnknownGame(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	_, err := a.Game(ctx, "missing")
	testutil.AssertErrorIs(t, err, ErrGameNotFound)
	testutil.AssertErrorIs(t, a.FinishGame(ctx, "missing", model.ResultDraw), ErrGameNotFound)
	testutil.AssertErrorIs(t, a.SetPlayer(ctx, "missing", model.White, "alice"), ErrGameNotFound)

	moves, err := a.Moves(ctx, "missing")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 0)
}

func TestAppendMovesAndFinish(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	testutil.AssertNoError(t, a.CreateGame(ctx, "g1", model.InitialFEN))

	g := model.NewGame()
	san := []string{"f3", "e5", "g4", "Qh4#"}
	for i, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		for _, s := range []string{uci[:2], uci[2:]} {
			_, err := g.HandleSelection(8-int(s[1]-'0'), int(s[0]-'a'))
			testutil.AssertNoError(t, err)
		}
		testutil.AssertNoError(t, a.AppendMove(ctx, "g1", *g.LastMove(), san[i], g.FEN()))
	}
	testutil.AssertNoError(t, a.FinishGame(ctx, "g1", g.Result()))

	moves, err := a.Moves(ctx, "g1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 4)
	testutil.AssertEqual(t, moves[3], Move{
		Number:   4,
		From:     "d8",
		To:       "h4",
		Kind:     model.MoveNormal,
		SAN:      "Qh4#",
		FENAfter: g.FEN(),
		Color:    model.Black,
		PlayedAt: moves[3].PlayedAt,
	})
	for i, m := range moves {
		testutil.AssertEqual(t, m.Number, i+1)
	}

	rec, err := a.Game(ctx, "g1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Result, model.ResultBlackWins)

	err = a.AppendMove(ctx, "g1", *g.LastMove(), "Qh4#", g.FEN())
	testutil.AssertTrue(t, err != nil, "duplicate move number accepted")
}
