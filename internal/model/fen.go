package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// InitialFEN is the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var fenPieces = map[rune]PieceType{
	'k': King,
	'q': Queen,
	'r': Rook,
	'b': Bishop,
	'n': Knight,
	'p': Pawn,
}

// ParseFEN builds a game from a FEN string. Placement and active colour are
// required; castling, en passant and the clocks default to "-", "-", 0 and 1.
func ParseFEN(fen string) (*Game, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("fen %q needs placement and active colour: %w", fen, ErrInvalidPosition)
	}
	for len(parts) < 6 {
		parts = append(parts, []string{"", "", "-", "-", "0", "1"}[len(parts)])
	}

	b := newEmptyBoard()
	if err := parsePlacement(b, parts[0]); err != nil {
		return nil, err
	}

	g := &Game{
		board:    b,
		phase:    PhaseChoosing,
		history:  make([]MoveRecord, 0),
		captured: newCapturedPieces(),
	}
	switch parts[1] {
	case "w":
		g.toMove = White
	case "b":
		g.toMove = Black
	default:
		return nil, fmt.Errorf("active colour %q: %w", parts[1], ErrInvalidPosition)
	}

	if err := parseCastling(b, parts[2]); err != nil {
		return nil, err
	}

	halfmove, err := strconv.Atoi(parts[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("halfmove clock %q: %w", parts[4], ErrInvalidPosition)
	}
	fullmove, err := strconv.Atoi(parts[5])
	if err != nil || fullmove < 1 {
		return nil, fmt.Errorf("fullmove number %q: %w", parts[5], ErrInvalidPosition)
	}
	g.halfmoveClock = halfmove
	g.moveNumber = (fullmove-1)*2 + 1
	if g.toMove == Black {
		g.moveNumber++
	}

	if err := g.parseEnPassant(parts[3]); err != nil {
		return nil, err
	}
	if err := validatePosition(b, g.toMove); err != nil {
		return nil, err
	}
	if err := g.evaluateEndOfTurn(); err != nil {
		return nil, err
	}
	g.startFEN = g.FEN()
	return g, nil
}

func parsePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("placement %q has %d ranks: %w", placement, len(ranks), ErrInvalidPosition)
	}
	for row, rank := range ranks {
		col := 0
		for _, c := range rank {
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			kind, ok := fenPieces[unicode.ToLower(c)]
			if !ok {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidPosition)
			}
			if col > 7 {
				return fmt.Errorf("rank %d overflows: %w", 8-row, ErrInvalidPosition)
			}
			color := Black
			if unicode.IsUpper(c) {
				color = White
			}
			piece, err := NewPiece(kind, b.Player(color))
			if err != nil {
				return err
			}
			piece.CanCastle = false
			b.squares[row][col].place(piece)
			col++
		}
		if col != 8 {
			return fmt.Errorf("rank %d has %d files: %w", 8-row, col, ErrInvalidPosition)
		}
	}
	return nil
}

func parseCastling(b *Board, field string) error {
	if field == "-" {
		return nil
	}
	for _, c := range field {
		var err error
		switch c {
		case 'K':
			err = enableCastling(b, White, 7)
		case 'Q':
			err = enableCastling(b, White, 0)
		case 'k':
			err = enableCastling(b, Black, 7)
		case 'q':
			err = enableCastling(b, Black, 0)
		default:
			err = fmt.Errorf("castling flag %q: %w", c, ErrInvalidPosition)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func enableCastling(b *Board, color Color, rookCol int) error {
	home := color.homeRow()
	king := b.PieceAt(Position{Row: home, Col: 4})
	rook := b.PieceAt(Position{Row: home, Col: rookCol})
	if king == nil || king.Type != King || king.Color != color ||
		rook == nil || rook.Type != Rook || rook.Color != color {
		return fmt.Errorf("%s cannot castle with rook on file %c: %w", color, 'a'+rookCol, ErrInvalidPosition)
	}
	king.CanCastle = true
	rook.CanCastle = true
	return nil
}

// parseEnPassant turns the en passant square into the two-square advance
// that must have produced it.
func (g *Game) parseEnPassant(field string) error {
	if field == "-" {
		return nil
	}
	target, err := parseSquare(field)
	if err != nil {
		return err
	}
	pusher := g.toMove.Opponent()
	dir := 1
	if pusher == White {
		dir = -1
	}
	from := Position{Row: target.Row - dir, Col: target.Col}
	to := Position{Row: target.Row + dir, Col: target.Col}
	pawn := g.board.PieceAt(to)
	if !from.InBounds() || !to.InBounds() || pawn == nil || pawn.Type != Pawn || pawn.Color != pusher ||
		!g.board.empty(from) || !g.board.empty(target) {
		return fmt.Errorf("en passant square %s: %w", field, ErrInvalidPosition)
	}
	g.lastMove = &MoveRecord{
		Number: g.moveNumber - 1,
		Color:  pusher,
		Piece:  Pawn,
		From:   from,
		To:     to,
		Kind:   MoveNormal,
	}
	return nil
}

func parseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("square %q: %w", s, ErrInvalidPosition)
	}
	return Position{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

// validatePosition requires one king per side, no pawns on the back ranks and
// the side that just moved not being in check.
func validatePosition(b *Board, toMove Color) error {
	for _, color := range []Color{White, Black} {
		kings := 0
		for _, pc := range b.Player(color).pieces {
			switch {
			case pc.Type == King:
				kings++
			case pc.Type == Pawn && (pc.Position.Row == 0 || pc.Position.Row == 7):
				return fmt.Errorf("%s pawn on %s: %w", color, pc.Position, ErrInvalidPosition)
			}
		}
		if kings != 1 {
			return fmt.Errorf("%s has %d kings: %w", color, kings, ErrInvalidPosition)
		}
	}
	checked, err := IsChecked(toMove.Opponent(), b)
	if err != nil {
		return err
	}
	if checked {
		return fmt.Errorf("%s is in check but not on move: %w", toMove.Opponent(), ErrInvalidPosition)
	}
	return nil
}

// FEN exports the current position.
func (g *Game) FEN() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		gap := 0
		for col := 0; col < 8; col++ {
			pc := g.board.squares[row][col].Piece
			if pc == nil {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteString(strconv.Itoa(gap))
				gap = 0
			}
			letter := pc.Type.letter()
			if pc.Color == Black {
				letter = strings.ToLower(letter)
			}
			sb.WriteString(letter)
		}
		if gap > 0 {
			sb.WriteString(strconv.Itoa(gap))
		}
	}

	active := "w"
	if g.toMove == Black {
		active = "b"
	}

	ep := "-"
	if g.lastMove.doublePawnPush() {
		ep = Position{Row: (g.lastMove.From.Row + g.lastMove.To.Row) / 2, Col: g.lastMove.To.Col}.Notation()
	}

	fullmove := (g.moveNumber-1)/2 + 1
	return fmt.Sprintf("%s %s %s %s %d %d", sb.String(), active, g.castlingRights(), ep, g.halfmoveClock, fullmove)
}

func (g *Game) castlingRights() string {
	var sb strings.Builder
	for _, side := range []struct {
		color   Color
		rookCol int
		flag    string
	}{
		{White, 7, "K"}, {White, 0, "Q"}, {Black, 7, "k"}, {Black, 0, "q"},
	} {
		home := side.color.homeRow()
		king := g.board.PieceAt(Position{Row: home, Col: 4})
		rook := g.board.PieceAt(Position{Row: home, Col: side.rookCol})
		if king != nil && king.Type == King && king.Color == side.color && king.CanCastle &&
			rook != nil && rook.Type == Rook && rook.Color == side.color && rook.CanCastle {
			sb.WriteString(side.flag)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
