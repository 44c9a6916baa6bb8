package model

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

type Phase string

const (
	PhaseChoosing Phase = "choosing"
	PhaseMoving   Phase = "moving"
)

// Rejection explains why a selection did not advance the game. These are
// expected user mistakes, never errors.
type Rejection string

const (
	RejectNone        Rejection = ""
	RejectEmptySquare Rejection = "empty-square"
	RejectEnemyPiece  Rejection = "enemy-piece"
	RejectCancelled   Rejection = "cancelled"
	RejectIllegal     Rejection = "illegal"
	RejectExposesKing Rejection = "exposes-king"
	RejectGameOver    Rejection = "game-over"
)

type Result string

const (
	ResultOngoing   Result = ""
	ResultWhiteWins Result = "1-0"
	ResultBlackWins Result = "0-1"
	ResultDraw      Result = "1/2-1/2"
)

// Status holds the end-of-turn flags raised by the last commit.
type Status struct {
	CheckWhite     bool `json:"checkWhite"`
	CheckBlack     bool `json:"checkBlack"`
	CheckmateWhite bool `json:"checkmateWhite"`
	CheckmateBlack bool `json:"checkmateBlack"`
	Stalemate      bool `json:"stalemate"`
}

// TurnEvent is returned by every selection. Status carries the flags raised
// by this selection's commit and is zero when nothing was committed.
type TurnEvent struct {
	Phase     Phase       `json:"phase"`
	ToMove    Color       `json:"toMove"`
	Selected  *Position   `json:"selected"`
	Committed bool        `json:"committed"`
	Move      *MoveRecord `json:"move"`
	Rejection Rejection   `json:"rejection,omitempty"`
	Status
	Result Result `json:"result"`
}

// CapturedPieces lists the pieces each colour has taken.
type CapturedPieces struct {
	White []PieceType `json:"white"`
	Black []PieceType `json:"black"`
}

func (c *CapturedPieces) add(by Color, kind PieceType) {
	if by == White {
		c.White = append(c.White, kind)
	} else {
		c.Black = append(c.Black, kind)
	}
}

// GameState is a read-only view for rendering.
type GameState struct {
	Board          [8][8]*Piece   `json:"board"`
	ToMove         Color          `json:"toMove"`
	Phase          Phase          `json:"phase"`
	SelectedSquare *Position      `json:"selectedSquare"`
	LegalTargets   []Position     `json:"legalTargets"`
	MoveNumber     int            `json:"moveNumber"`
	LastMove       *MoveRecord    `json:"lastMove"`
	MoveHistory    []MoveRecord   `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	Status
	Result Result `json:"result"`
	FEN    string `json:"fen"`
}

// Game drives the two-phase selection state machine over a board.
type Game struct {
	board         *Board
	toMove        Color
	phase         Phase
	selected      *Position
	moveNumber    int
	halfmoveClock int
	lastMove      *MoveRecord
	history       []MoveRecord
	captured      CapturedPieces
	status        Status
	result        Result
	startFEN      string
}

// NewGame sets up the standard starting position with White to choose.
func NewGame() *Game {
	return &Game{
		board:      newStartingBoard(),
		toMove:     White,
		phase:      PhaseChoosing,
		moveNumber: 1,
		history:    make([]MoveRecord, 0),
		captured:   newCapturedPieces(),
		startFEN:   InitialFEN,
	}
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]PieceType, 0),
		Black: make([]PieceType, 0),
	}
}

func (g *Game) Board() *Board { return g.board }

func (g *Game) ToMove() Color { return g.toMove }

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) Result() Result { return g.result }

func (g *Game) MoveNumber() int { return g.moveNumber }

func (g *Game) LastMove() *MoveRecord { return g.lastMove }

func (g *Game) StartFEN() string { return g.startFEN }

func (g *Game) Status() Status { return g.status }

// History returns the committed plies in order.
func (g *Game) History() []MoveRecord {
	out := make([]MoveRecord, len(g.history))
	copy(out, g.history)
	return out
}

// HandleSelection feeds one square selection into the state machine. The
// returned error is non-nil only for contract violations such as coordinates
// off the board.
func (g *Game) HandleSelection(row, col int) (TurnEvent, error) {
	sq, err := g.board.Get(row, col)
	if err != nil {
		return TurnEvent{}, err
	}
	if g.result != ResultOngoing {
		return g.event(RejectGameOver), nil
	}

	switch g.phase {
	case PhaseChoosing:
		return g.choose(sq), nil
	case PhaseMoving:
		return g.moveTo(sq)
	}
	return TurnEvent{}, fmt.Errorf("unknown phase %q", g.phase)
}

func (g *Game) choose(sq *Square) TurnEvent {
	if !sq.Occupied() {
		return g.event(RejectEmptySquare)
	}
	if sq.Piece.Color != g.toMove {
		return g.event(RejectEnemyPiece)
	}
	pos := sq.Position
	g.selected = &pos
	g.phase = PhaseMoving
	return g.event(RejectNone)
}

func (g *Game) moveTo(sq *Square) (TurnEvent, error) {
	from := *g.selected
	move, verdict := Classify(g.board, from, sq.Position, g.lastMove)
	switch verdict {
	case VerdictReset, VerdictOwnPiece:
		g.resetToChoosing()
		return g.event(RejectCancelled), nil
	case VerdictIllegal:
		log.Debugf("%s cannot move from %s to %s", g.toMove, from, sq.Position)
		g.resetToChoosing()
		return g.event(RejectIllegal), nil
	}

	exposed, err := ExposesKing(g.board, move)
	if err != nil {
		g.resetToChoosing()
		return TurnEvent{}, err
	}
	if exposed {
		log.Debugf("%s %s to %s leaves the king exposed", g.toMove, from, sq.Position)
		g.resetToChoosing()
		return g.event(RejectExposesKing), nil
	}

	record, err := g.commit(move)
	g.resetToChoosing()
	if err != nil {
		return TurnEvent{}, err
	}
	ev := g.event(RejectNone)
	ev.Committed = true
	ev.Move = &record
	ev.Status = g.status
	return ev, nil
}

func (g *Game) resetToChoosing() {
	g.selected = nil
	g.phase = PhaseChoosing
}

func (g *Game) commit(move Move) (MoveRecord, error) {
	mover := move.Piece.Type
	res, err := g.board.apply(move)
	if err != nil {
		return MoveRecord{}, err
	}

	record := MoveRecord{
		Number:         g.moveNumber,
		Color:          g.toMove,
		Piece:          mover,
		From:           move.From,
		To:             move.To,
		Kind:           move.Kind,
		CastleRookMove: res.rook,
		Promotion:      move.Promotion,
	}
	if move.Promotion {
		record.Piece = Queen
	}
	if res.captured != nil {
		record.Captured = res.captured.Type
		at := res.capturedAt
		record.CapturedAt = &at
		g.captured.add(g.toMove, res.captured.Type)
	}
	if mover == Pawn || res.captured != nil {
		g.halfmoveClock = 0
	} else {
		g.halfmoveClock++
	}

	g.lastMove = &record
	g.history = append(g.history, record)
	log.Infof("Move #%d: %s moved a %s from %s to %s", record.Number, record.Color, mover, record.From, record.To)

	g.moveNumber++
	g.toMove = g.toMove.Opponent()
	if err := g.evaluateEndOfTurn(); err != nil {
		return record, err
	}
	return record, nil
}

// evaluateEndOfTurn raises check and checkmate for both colours and
// stalemate for the side now to move.
func (g *Game) evaluateEndOfTurn() error {
	var st Status
	for _, color := range []Color{White, Black} {
		var last *MoveRecord
		if color == g.toMove {
			last = g.lastMove
		}
		checked, err := IsChecked(color, g.board)
		if err != nil {
			return err
		}
		canMove := true
		if checked || color == g.toMove {
			if canMove, err = CanMove(color, g.board, last); err != nil {
				return err
			}
		}

		mate := checked && !canMove
		switch color {
		case White:
			st.CheckWhite, st.CheckmateWhite = checked, mate
		case Black:
			st.CheckBlack, st.CheckmateBlack = checked, mate
		}
		if color == g.toMove && !checked && !canMove {
			st.Stalemate = true
		}
	}
	g.status = st

	switch {
	case st.CheckmateWhite:
		g.result = ResultBlackWins
		log.Infof("White is checkmate. Black wins.")
	case st.CheckmateBlack:
		g.result = ResultWhiteWins
		log.Infof("Black is checkmate. White wins.")
	case st.Stalemate:
		g.result = ResultDraw
		log.Infof("No possible moves left for unchecked %s. Remis.", g.toMove)
	case st.CheckWhite:
		log.Infof("White is checked.")
	case st.CheckBlack:
		log.Infof("Black is checked.")
	}
	return nil
}

func (g *Game) event(reason Rejection) TurnEvent {
	ev := TurnEvent{
		Phase:     g.phase,
		ToMove:    g.toMove,
		Rejection: reason,
		Result:    g.result,
	}
	if g.selected != nil {
		sel := *g.selected
		ev.Selected = &sel
	}
	return ev
}

// State returns a snapshot for rendering; mutating it does not affect the game.
func (g *Game) State() GameState {
	state := GameState{
		Board:          g.board.Grid(),
		ToMove:         g.toMove,
		Phase:          g.phase,
		LegalTargets:   []Position{},
		MoveNumber:     g.moveNumber,
		MoveHistory:    g.History(),
		CapturedPieces: g.capturedCopy(),
		Status:         g.status,
		Result:         g.result,
		FEN:            g.FEN(),
	}
	if g.lastMove != nil {
		last := *g.lastMove
		state.LastMove = &last
	}
	if g.selected != nil {
		sel := *g.selected
		state.SelectedSquare = &sel
		targets, err := LegalTargets(g.board, sel, g.lastMove)
		if err != nil {
			log.Errorf("legal targets from %s: %v", sel, err)
		} else {
			state.LegalTargets = targets
		}
	}
	return state
}

func (g *Game) capturedCopy() CapturedPieces {
	out := newCapturedPieces()
	out.White = append(out.White, g.captured.White...)
	out.Black = append(out.Black, g.captured.Black...)
	return out
}
