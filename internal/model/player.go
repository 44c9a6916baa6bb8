package model

// Player groups the pieces one colour currently owns and tracks its king.
type Player struct {
	Color  Color
	pieces []*Piece
	king   *Piece
}

func NewPlayer(color Color) *Player {
	return &Player{Color: color, pieces: make([]*Piece, 0, 16)}
}

// Pieces returns the pieces still owned by the player.
func (p *Player) Pieces() []*Piece {
	out := make([]*Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

func (p *Player) King() (*Piece, error) {
	if p.king == nil {
		return nil, ErrMissingKing
	}
	return p.king, nil
}

func (p *Player) owns(piece *Piece) bool {
	for _, pc := range p.pieces {
		if pc == piece {
			return true
		}
	}
	return false
}

func (p *Player) adopt(piece *Piece) {
	p.pieces = append(p.pieces, piece)
	if piece.Type == King && p.king == nil {
		p.king = piece
	}
}

func (p *Player) remove(piece *Piece) {
	for i, pc := range p.pieces {
		if pc == piece {
			p.pieces = append(p.pieces[:i], p.pieces[i+1:]...)
			break
		}
	}
	if p.king == piece {
		p.king = nil
	}
}
