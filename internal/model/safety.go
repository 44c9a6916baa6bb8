package model

// applied describes what a move did to a board.
type applied struct {
	captured   *Piece
	capturedAt Position
	rook       *CastleRookMove
}

// apply performs m on b. It addresses squares by coordinate only, so a move
// classified on one board can be replayed on a snapshot of it. The game commit
// and the king-safety simulation share this path.
func (b *Board) apply(m Move) (applied, error) {
	fromSq := &b.squares[m.From.Row][m.From.Col]
	piece, err := fromSq.Occupant()
	if err != nil {
		return applied{}, err
	}

	var res applied
	at := m.victimSquare()
	victimSq := &b.squares[at.Row][at.Col]
	if victim := victimSq.Piece; victim != nil && victim.Color != piece.Color {
		victimSq.clear()
		b.Player(victim.Color).remove(victim)
		res.captured, res.capturedAt = victim, at
	}

	fromSq.clear()
	toSq := &b.squares[m.To.Row][m.To.Col]
	toSq.place(piece)
	piece.CanCastle = false

	if m.Kind == MoveCastle {
		rookFrom, rookTo, _ := castlingRookSquares(m.To)
		rookSq := &b.squares[rookFrom.Row][rookFrom.Col]
		rook, err := rookSq.Occupant()
		if err != nil {
			return applied{}, err
		}
		rookSq.clear()
		b.squares[rookTo.Row][rookTo.Col].place(rook)
		rook.CanCastle = false
		res.rook = &CastleRookMove{From: rookFrom, To: rookTo}
	}

	if m.Promotion {
		owner := b.Player(piece.Color)
		owner.remove(piece)
		toSq.clear()
		queen, err := NewPiece(Queen, owner)
		if err != nil {
			return applied{}, err
		}
		queen.CanCastle = false
		toSq.place(queen)
	}
	return res, nil
}

// ExposesKing plays m on a snapshot of b and reports whether the mover's king
// is attacked afterwards. A castling king must also not start on or pass
// through an attacked square. b itself is never modified.
func ExposesKing(b *Board, m Move) (bool, error) {
	color := m.Piece.Color
	if m.Kind == MoveCastle {
		checked, err := IsChecked(color, b)
		if err != nil || checked {
			return checked, err
		}
		transit := Position{Row: m.From.Row, Col: (m.From.Col + m.To.Col) / 2}
		exposed, err := exposedAfter(b, Move{Piece: m.Piece, From: m.From, To: transit, Kind: MoveNormal}, color)
		if err != nil || exposed {
			return exposed, err
		}
	}
	return exposedAfter(b, m, color)
}

func exposedAfter(b *Board, m Move, color Color) (bool, error) {
	sim := b.Snapshot()
	if _, err := sim.apply(m); err != nil {
		return false, err
	}
	return IsChecked(color, sim)
}
