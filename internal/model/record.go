package model

import "fmt"

// GameRecord is the serialisable form of a game between selections. The
// pending selection is not kept; a restored game always starts choosing.
type GameRecord struct {
	Pieces        []Piece        `json:"pieces"`
	ToMove        Color          `json:"toMove"`
	MoveNumber    int            `json:"moveNumber"`
	HalfmoveClock int            `json:"halfmoveClock"`
	LastMove      *MoveRecord    `json:"lastMove"`
	History       []MoveRecord   `json:"history"`
	Captured      CapturedPieces `json:"captured"`
	Status        Status         `json:"status"`
	Result        Result         `json:"result"`
	StartFEN      string         `json:"startFen"`
}

func (g *Game) Record() GameRecord {
	rec := GameRecord{
		Pieces:        make([]Piece, 0, 32),
		ToMove:        g.toMove,
		MoveNumber:    g.moveNumber,
		HalfmoveClock: g.halfmoveClock,
		History:       g.History(),
		Captured:      g.capturedCopy(),
		Status:        g.status,
		Result:        g.result,
		StartFEN:      g.startFEN,
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := g.board.squares[row][col].Piece; pc != nil {
				rec.Pieces = append(rec.Pieces, *pc)
			}
		}
	}
	if g.lastMove != nil {
		last := *g.lastMove
		rec.LastMove = &last
	}
	return rec
}

// RestoreGame rebuilds a game from a record.
func RestoreGame(rec GameRecord) (*Game, error) {
	if rec.ToMove != White && rec.ToMove != Black {
		return nil, fmt.Errorf("side to move %q: %w", rec.ToMove, ErrInvalidPosition)
	}
	if rec.MoveNumber < 1 {
		return nil, fmt.Errorf("move number %d: %w", rec.MoveNumber, ErrInvalidPosition)
	}

	b := newEmptyBoard()
	for _, pr := range rec.Pieces {
		if pr.Color != White && pr.Color != Black {
			return nil, fmt.Errorf("piece colour %q: %w", pr.Color, ErrInvalidPosition)
		}
		sq, err := b.Get(pr.Position.Row, pr.Position.Col)
		if err != nil {
			return nil, err
		}
		if sq.Occupied() {
			return nil, fmt.Errorf("two pieces on %s: %w", pr.Position, ErrInvalidPosition)
		}
		piece, err := NewPiece(pr.Type, b.Player(pr.Color))
		if err != nil {
			return nil, err
		}
		piece.CanCastle = pr.CanCastle
		b.Place(sq, piece)
	}
	if err := validatePosition(b, rec.ToMove); err != nil {
		return nil, err
	}

	g := &Game{
		board:         b,
		toMove:        rec.ToMove,
		phase:         PhaseChoosing,
		moveNumber:    rec.MoveNumber,
		halfmoveClock: rec.HalfmoveClock,
		history:       append(make([]MoveRecord, 0, len(rec.History)), rec.History...),
		captured:      newCapturedPieces(),
		status:        rec.Status,
		result:        rec.Result,
		startFEN:      rec.StartFEN,
	}
	g.captured.White = append(g.captured.White, rec.Captured.White...)
	g.captured.Black = append(g.captured.Black, rec.Captured.Black...)
	if rec.LastMove != nil {
		last := *rec.LastMove
		g.lastMove = &last
	}
	if g.startFEN == "" {
		g.startFEN = InitialFEN
	}
	return g, nil
}
