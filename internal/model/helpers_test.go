package model

import (
	"sort"
	"testing"
	"unicode"
)

// put builds a board from codes such as "wKe1" or "bPd7". Kings and rooks
// keep their castling rights.
func put(t *testing.T, codes ...string) *Board {
	t.Helper()
	b := newEmptyBoard()
	for _, code := range codes {
		color := White
		if code[0] == 'b' {
			color = Black
		}
		kind, ok := fenPieces[unicode.ToLower(rune(code[1]))]
		if !ok {
			t.Fatalf("bad piece in %q", code)
		}
		piece, err := NewPiece(kind, b.Player(color))
		if err != nil {
			t.Fatalf("NewPiece(%s): %v", code, err)
		}
		pos := sq(t, code[2:])
		b.squares[pos.Row][pos.Col].place(piece)
	}
	return b
}

func sq(t *testing.T, s string) Position {
	t.Helper()
	pos, err := parseSquare(s)
	if err != nil {
		t.Fatalf("parseSquare(%q): %v", s, err)
	}
	return pos
}

func mustFEN(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return g
}

// try selects the two squares of a move such as "e2e4" and returns the
// event of the second selection.
func try(t *testing.T, g *Game, uci string) TurnEvent {
	t.Helper()
	from, to := sq(t, uci[:2]), sq(t, uci[2:4])
	ev, err := g.HandleSelection(from.Row, from.Col)
	if err != nil {
		t.Fatalf("select %s: %v", uci[:2], err)
	}
	if ev.Phase != PhaseMoving {
		t.Fatalf("select %s: phase = %s (rejection %q), want moving", uci[:2], ev.Phase, ev.Rejection)
	}
	ev, err = g.HandleSelection(to.Row, to.Col)
	if err != nil {
		t.Fatalf("select %s: %v", uci[2:4], err)
	}
	return ev
}

// play commits each move in order and fails on the first rejection.
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if ev := try(t, g, m); !ev.Committed {
			t.Fatalf("move %s rejected: %q", m, ev.Rejection)
		}
	}
}

// reachable lists, in sorted notation, every square piece could move to
// according to its geometry alone.
func reachable(piece *Piece, b *Board) []string {
	out := []string{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pos := Position{Row: row, Col: col}
			if piece.IsValidMove(pos, b) {
				out = append(out, pos.Notation())
			}
		}
	}
	sort.Strings(out)
	return out
}

func notations(ps []Position) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Notation())
	}
	sort.Strings(out)
	return out
}
