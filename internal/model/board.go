package model

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

func (p PieceType) valid() bool {
	switch p {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// homeRow is the back rank a colour starts on; White sits nearest row 7.
func (c Color) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

// farRow is where this colour's pawns promote.
func (c Color) farRow() int {
	return c.Opponent().homeRow()
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// Notation renders the square as "e4", with row 0 being rank 8.
func (p Position) Notation() string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

func (p Position) String() string {
	return p.Notation()
}

// Square is a fixed cell of the board. Shade is cosmetic and never consulted by the rules.
type Square struct {
	Position Position `json:"position"`
	Shade    Color    `json:"shade"`
	Piece    *Piece   `json:"piece"`
}

func (s *Square) Occupied() bool {
	return s.Piece != nil
}

// Occupant returns the piece on the square or ErrEmptySquare.
func (s *Square) Occupant() (*Piece, error) {
	if s.Piece == nil {
		return nil, fmt.Errorf("%s: %w", s.Position, ErrEmptySquare)
	}
	return s.Piece, nil
}

// Board owns the 8x8 squares and the two players whose pieces stand on them.
// The square array is the single source of truth for occupancy; a piece only
// caches its coordinate.
type Board struct {
	squares [8][8]Square
	white   *Player
	black   *Player
}

func newEmptyBoard() *Board {
	b := &Board{
		white: NewPlayer(White),
		black: NewPlayer(Black),
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			shade := White
			if (row+col)%2 == 1 {
				shade = Black
			}
			b.squares[row][col] = Square{Position: Position{Row: row, Col: col}, Shade: shade}
		}
	}
	return b
}

func newStartingBoard() *Board {
	b := newEmptyBoard()
	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for _, color := range []Color{Black, White} {
		player := b.Player(color)
		home := color.homeRow()
		pawnRow := home + 1
		if color == White {
			pawnRow = home - 1
		}
		for col, kind := range backRank {
			b.squares[home][col].place(mustPiece(kind, player))
			b.squares[pawnRow][col].place(mustPiece(Pawn, player))
		}
	}
	return b
}

func (b *Board) Player(color Color) *Player {
	if color == White {
		return b.white
	}
	return b.black
}

// Get returns the square at (row, col).
func (b *Board) Get(row, col int) (*Square, error) {
	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return nil, fmt.Errorf("(%d, %d): %w", row, col, ErrOutOfRange)
	}
	return &b.squares[row][col], nil
}

// PieceAt returns the occupant of an in-bounds position, or nil.
func (b *Board) PieceAt(pos Position) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return b.squares[pos.Row][pos.Col].Piece
}

func (b *Board) empty(pos Position) bool {
	return b.PieceAt(pos) == nil
}

// Place puts piece on square, replacing any previous occupant reference.
func (b *Board) Place(sq *Square, piece *Piece) {
	sq.place(piece)
}

// Clear detaches the occupant from square and returns it.
func (b *Board) Clear(sq *Square) *Piece {
	return sq.clear()
}

func (s *Square) place(piece *Piece) {
	if s.Piece != nil && s.Piece != piece {
		s.Piece.onBoard = false
	}
	s.Piece = piece
	piece.Position = s.Position
	piece.onBoard = true
}

func (s *Square) clear() *Piece {
	piece := s.Piece
	s.Piece = nil
	if piece != nil {
		piece.onBoard = false
	}
	return piece
}

// Snapshot returns an independent copy of the board with fresh players.
// Pieces carry plain coordinates, so the copy is a single pass over the grid.
func (b *Board) Snapshot() *Board {
	cp := &Board{
		squares: b.squares,
		white:   NewPlayer(White),
		black:   NewPlayer(Black),
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := &cp.squares[row][col]
			if sq.Piece == nil {
				continue
			}
			piece := *sq.Piece
			sq.Piece = &piece
			cp.Player(piece.Color).adopt(&piece)
		}
	}
	return cp
}

func (b *Board) kingPosition(color Color) (Position, error) {
	king, err := b.Player(color).King()
	if err != nil {
		return Position{}, err
	}
	return king.Position, nil
}

// Grid returns a copy of the occupancy for rendering. Mutating it does not affect the board.
func (b *Board) Grid() [8][8]*Piece {
	var grid [8][8]*Piece
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := b.squares[row][col].Piece; pc != nil {
				view := *pc
				grid[row][col] = &view
			}
		}
	}
	return grid
}
