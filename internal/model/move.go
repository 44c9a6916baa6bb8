package model

import "strings"

type MoveKind string

const (
	MoveNormal    MoveKind = "normal"
	MoveCapture   MoveKind = "capture"
	MoveCastle    MoveKind = "castle"
	MoveEnPassant MoveKind = "en-passant"
)

// Move is a classified candidate that has not been committed yet.
type Move struct {
	Piece     *Piece
	From      Position
	To        Position
	Kind      MoveKind
	Promotion bool
}

// victimSquare is where the captured piece stands, if any. For en passant it
// is beside the capturing pawn, not the target.
func (m Move) victimSquare() Position {
	if m.Kind == MoveEnPassant {
		return Position{Row: m.From.Row, Col: m.To.Col}
	}
	return m.To
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// MoveRecord is a committed ply.
type MoveRecord struct {
	Number         int             `json:"number"`
	Color          Color           `json:"color"`
	Piece          PieceType       `json:"piece"` // after promotion, the queen
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	Kind           MoveKind        `json:"kind"`
	Captured       PieceType       `json:"captured,omitempty"`
	CapturedAt     *Position       `json:"capturedAt,omitempty"`
	CastleRookMove *CastleRookMove `json:"castleRookMove,omitempty"`
	Promotion      bool            `json:"promotion"`
}

// UCI renders the move in long algebraic form, e.g. "e2e4" or "e7e8q".
func (m MoveRecord) UCI() string {
	var sb strings.Builder
	sb.WriteString(m.From.Notation())
	sb.WriteString(m.To.Notation())
	if m.Promotion {
		sb.WriteString("q")
	}
	return sb.String()
}

// doublePawnPush reports whether the record is a two-square pawn advance,
// the only move that opens an en passant window.
func (m *MoveRecord) doublePawnPush() bool {
	if m == nil {
		return false
	}
	return m.Piece == Pawn && m.From.Col == m.To.Col && abs(m.From.Row-m.To.Row) == 2
}
