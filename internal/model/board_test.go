package model

import (
	"testing"

	"github.com/benbeisheim/chessrules-backend/internal/testutil"
)

func TestNewGameStartingArrangement(t *testing.T) {
	g := NewGame()
	b := g.Board()

	testutil.AssertEqual(t, g.ToMove(), White)
	testutil.AssertEqual(t, g.Phase(), PhaseChoosing)
	testutil.AssertEqual(t, g.MoveNumber(), 1)
	testutil.AssertEqual(t, len(b.Player(White).Pieces()), 16)
	testutil.AssertEqual(t, len(b.Player(Black).Pieces()), 16)
	testutil.AssertEqual(t, g.FEN(), InitialFEN)

	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, kind := range backRank {
		for _, tc := range []struct {
			row   int
			kind  PieceType
			color Color
		}{
			{0, kind, Black},
			{1, Pawn, Black},
			{6, Pawn, White},
			{7, kind, White},
		} {
			pc := b.PieceAt(Position{Row: tc.row, Col: col})
			if pc == nil || pc.Type != tc.kind || pc.Color != tc.color {
				t.Errorf("(%d,%d) = %v, want %s %s", tc.row, col, pc, tc.color, tc.kind)
				continue
			}
			testutil.AssertEqual(t, pc.Position, Position{Row: tc.row, Col: col})
			testutil.AssertEqual(t, pc.CanCastle, tc.kind == King || tc.kind == Rook, "castling right of %s", pc)
		}
	}
	for row := 2; row < 6; row++ {
		for col := 0; col < 8; col++ {
			if pc := b.PieceAt(Position{Row: row, Col: col}); pc != nil {
				t.Errorf("(%d,%d) holds %s, want empty", row, col, pc)
			}
		}
	}

	for _, color := range []Color{White, Black} {
		king, err := b.Player(color).King()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, king.Position, Position{Row: color.homeRow(), Col: 4})
	}
}

func TestSquareShades(t *testing.T) {
	b := newEmptyBoard()
	a1, err := b.Get(7, 0)
	testutil.AssertNoError(t, err)
	h1, err := b.Get(7, 7)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, a1.Shade, Black)
	testutil.AssertEqual(t, h1.Shade, White)
}

func TestBoardGetOutOfRange(t *testing.T) {
	b := newEmptyBoard()
	tests := []struct {
		row, col int
	}{
		{-1, 0}, {0, -1}, {8, 0}, {0, 8}, {100, 100},
	}

	for _, tt := range tests {
		_, err := b.Get(tt.row, tt.col)
		testutil.AssertErrorIs(t, err, ErrOutOfRange, "Get(%d, %d)", tt.row, tt.col)
	}

	s, err := b.Get(7, 7)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, s.Position.Notation(), "h1")
}

func TestOccupantOfEmptySquare(t *testing.T) {
	b := newEmptyBoard()
	s, err := b.Get(4, 4)
	testutil.AssertNoError(t, err)
	_, err = s.Occupant()
	testutil.AssertErrorIs(t, err, ErrEmptySquare)
}

func TestNewPieceRequiresOwner(t *testing.T) {
	_, err := NewPiece(Queen, nil)
	testutil.AssertErrorIs(t, err, ErrNoOwner)

	_, err = NewPiece(PieceType("archbishop"), NewPlayer(White))
	testutil.AssertErrorIs(t, err, ErrUnknownPiece)
}

func TestPlaceAndClear(t *testing.T) {
	b := newEmptyBoard()
	rook, err := NewPiece(Rook, b.Player(White))
	testutil.AssertNoError(t, err)

	s, err := b.Get(3, 5)
	testutil.AssertNoError(t, err)
	b.Place(s, rook)
	testutil.AssertTrue(t, rook.OnBoard())
	testutil.AssertEqual(t, rook.Position, Position{Row: 3, Col: 5})
	testutil.AssertTrue(t, b.PieceAt(Position{Row: 3, Col: 5}) == rook)

	cleared := b.Clear(s)
	testutil.AssertTrue(t, cleared == rook)
	testutil.AssertFalse(t, rook.OnBoard())
	testutil.AssertFalse(t, s.Occupied())
	testutil.AssertTrue(t, b.Clear(s) == nil)
}

func TestPlayerWithoutKing(t *testing.T) {
	b := put(t, "wKe1", "bRa8")
	_, err := b.Player(Black).King()
	testutil.AssertErrorIs(t, err, ErrMissingKing)
	_, err = IsChecked(Black, b)
	testutil.AssertErrorIs(t, err, ErrMissingKing)
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := NewGame()
	orig := g.Board()
	before := g.FEN()

	sim := orig.Snapshot()
	testutil.AssertTrue(t, sim.Player(White) != orig.Player(White))
	testutil.AssertEqual(t, len(sim.Player(White).Pieces()), 16)
	testutil.AssertEqual(t, len(sim.Player(Black).Pieces()), 16)

	pawn := sim.PieceAt(sq(t, "e2"))
	testutil.AssertTrue(t, pawn != orig.PieceAt(sq(t, "e2")), "snapshot shares a piece with the original")

	_, err := sim.apply(Move{Piece: pawn, From: sq(t, "e2"), To: sq(t, "e4"), Kind: MoveNormal})
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, sim.PieceAt(sq(t, "e4")) != nil)
	testutil.AssertTrue(t, orig.PieceAt(sq(t, "e4")) == nil)
	testutil.AssertEqual(t, g.FEN(), before)

	simKing, err := sim.Player(Black).King()
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, sim.PieceAt(simKing.Position) == simKing, "snapshot king is not the piece on its square")
}

func TestGridIsACopy(t *testing.T) {
	g := NewGame()
	grid := g.Board().Grid()
	grid[6][4].Position = Position{Row: 0, Col: 0}
	grid[0][0] = nil

	testutil.AssertEqual(t, g.Board().PieceAt(sq(t, "e2")).Position, sq(t, "e2"))
	testutil.AssertTrue(t, g.Board().PieceAt(sq(t, "a8")) != nil)
}

func TestPositionNotation(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{Row: 0, Col: 0}, "a8"},
		{Position{Row: 7, Col: 0}, "a1"},
		{Position{Row: 7, Col: 7}, "h1"},
		{Position{Row: 4, Col: 4}, "e4"},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, tt.pos.Notation(), tt.want)
		back, err := parseSquare(tt.want)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, back, tt.pos)
	}
}
