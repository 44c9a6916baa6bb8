package model

import "fmt"

// Piece is a typed, coloured man on the board. Only Position and CanCastle
// change after creation; CanCastle is meaningful for kings and rooks only.
type Piece struct {
	Type      PieceType `json:"type"`
	Color     Color     `json:"color"`
	Position  Position  `json:"position"`
	CanCastle bool      `json:"canCastle"`
	onBoard   bool
}

// NewPiece creates a piece of the given kind owned by owner.
func NewPiece(kind PieceType, owner *Player) (*Piece, error) {
	if owner == nil {
		return nil, ErrNoOwner
	}
	if !kind.valid() {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownPiece)
	}
	piece := &Piece{
		Type:      kind,
		Color:     owner.Color,
		CanCastle: kind == King || kind == Rook,
	}
	owner.adopt(piece)
	return piece, nil
}

func mustPiece(kind PieceType, owner *Player) *Piece {
	piece, err := NewPiece(kind, owner)
	if err != nil {
		panic(err)
	}
	return piece
}

// OnBoard reports whether the piece still stands on a square.
func (p *Piece) OnBoard() bool {
	return p.onBoard
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s on %s", p.Color, p.Type, p.Position)
}

// IsValidMove reports whether the piece could reach target from its current
// square on this occupancy, ignoring turn order and king safety.
func (p *Piece) IsValidMove(target Position, b *Board) bool {
	if !target.InBounds() || target == p.Position {
		return false
	}
	switch p.Type {
	case Pawn:
		return p.validPawnMove(target, b)
	case Knight:
		return validKnightMove(p.Position, target)
	case Bishop:
		return validBishopMove(p.Position, target, b)
	case Rook:
		return validRookMove(p.Position, target, b)
	case Queen:
		return validRookMove(p.Position, target, b) || validBishopMove(p.Position, target, b)
	case King:
		return validKingMove(p.Position, target)
	}
	return false
}

func (p *Piece) forward() int {
	if p.Color == White {
		return -1
	}
	return 1
}

func (p *Piece) pawnStartRow() int {
	if p.Color == White {
		return 6
	}
	return 1
}

func (p *Piece) validPawnMove(target Position, b *Board) bool {
	dir := p.forward()
	dRow := target.Row - p.Position.Row
	dCol := abs(target.Col - p.Position.Col)

	switch {
	case dCol == 0 && dRow == dir:
		return b.empty(target)
	case dCol == 0 && dRow == 2*dir:
		passed := Position{Row: p.Position.Row + dir, Col: p.Position.Col}
		return p.Position.Row == p.pawnStartRow() && b.empty(passed) && b.empty(target)
	case dCol == 1 && dRow == dir:
		victim := b.PieceAt(target)
		return victim != nil && victim.Color != p.Color
	}
	return false
}

// IsValidEnPassantMove accepts a one-square diagonal advance onto an empty
// square. Whether en passant is actually available this ply is decided by the
// game from the last move.
func (p *Piece) IsValidEnPassantMove(target Position, b *Board) bool {
	if p.Type != Pawn || !target.InBounds() {
		return false
	}
	return target.Row-p.Position.Row == p.forward() &&
		abs(target.Col-p.Position.Col) == 1 &&
		b.empty(target)
}

// IsValidCastlingMove checks the unmoved king and rook, the destination and
// the empty squares between them. Attacked squares are left to the king-safety
// simulation.
func (p *Piece) IsValidCastlingMove(target Position, b *Board) bool {
	if p.Type != King || !p.CanCastle {
		return false
	}
	home := p.Color.homeRow()
	if p.Position != (Position{Row: home, Col: 4}) || target.Row != home {
		return false
	}
	rookFrom, _, ok := castlingRookSquares(target)
	if !ok {
		return false
	}
	rook := b.PieceAt(rookFrom)
	if rook == nil || rook.Type != Rook || rook.Color != p.Color || !rook.CanCastle {
		return false
	}
	return b.pathClear(p.Position, rookFrom)
}

// castlingRookSquares maps a castling destination of the king to the rook's
// home and landing squares.
func castlingRookSquares(kingTarget Position) (from, to Position, ok bool) {
	switch kingTarget.Col {
	case 2:
		return Position{Row: kingTarget.Row, Col: 0}, Position{Row: kingTarget.Row, Col: 3}, true
	case 6:
		return Position{Row: kingTarget.Row, Col: 7}, Position{Row: kingTarget.Row, Col: 5}, true
	}
	return Position{}, Position{}, false
}

func validKnightMove(from, to Position) bool {
	dRow := abs(to.Row - from.Row)
	dCol := abs(to.Col - from.Col)
	return (dRow == 1 && dCol == 2) || (dRow == 2 && dCol == 1)
}

func validBishopMove(from, to Position, b *Board) bool {
	dRow := abs(to.Row - from.Row)
	dCol := abs(to.Col - from.Col)
	return dRow == dCol && dRow != 0 && b.pathClear(from, to)
}

func validRookMove(from, to Position, b *Board) bool {
	sameRow := from.Row == to.Row
	sameCol := from.Col == to.Col
	return sameRow != sameCol && b.pathClear(from, to)
}

func validKingMove(from, to Position) bool {
	dRow := abs(to.Row - from.Row)
	dCol := abs(to.Col - from.Col)
	return max(dRow, dCol) == 1
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, column or diagonal.
func (b *Board) pathClear(from, to Position) bool {
	step := Position{Row: sign(to.Row - from.Row), Col: sign(to.Col - from.Col)}
	cur := Position{Row: from.Row + step.Row, Col: from.Col + step.Col}
	for cur != to {
		if !b.empty(cur) {
			return false
		}
		cur = Position{Row: cur.Row + step.Row, Col: cur.Col + step.Col}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
