// Package notation keeps a parallel game in standard notation so committed
// moves can be exported as SAN, PGN and FEN.
package notation

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

var ErrUnmatchedMove = errors.New("move not legal in notation game")

// Recorder mirrors a rules game move by move.
type Recorder struct {
	game *chess.Game
	san  []string
}

// NewRecorder starts a recorder at the given FEN. An empty FEN means the
// standard starting position.
func NewRecorder(fen string) (*Recorder, error) {
	if fen == "" || fen == model.InitialFEN {
		return &Recorder{game: chess.NewGame()}, nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("notation start position: %w", err)
	}
	return &Recorder{game: chess.NewGame(opt)}, nil
}

// Replay builds a recorder from a start position and the plies played since.
func Replay(fen string, history []model.MoveRecord) (*Recorder, error) {
	r, err := NewRecorder(fen)
	if err != nil {
		return nil, err
	}
	for _, m := range history {
		if _, err := r.Record(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Record plays a committed move and returns its SAN, including any check or
// mate suffix.
func (r *Recorder) Record(m model.MoveRecord) (string, error) {
	uci := m.UCI()
	for _, candidate := range r.game.ValidMoves() {
		if candidate.String() != uci {
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(r.game.Position(), candidate)
		if err := r.game.Move(candidate); err != nil {
			return "", fmt.Errorf("%s: %w", uci, err)
		}
		r.san = append(r.san, san)
		return san, nil
	}
	return "", fmt.Errorf("%s: %w", uci, ErrUnmatchedMove)
}

// SAN returns the recorded moves in standard algebraic notation.
func (r *Recorder) SAN() []string {
	out := make([]string, len(r.san))
	copy(out, r.san)
	return out
}

// PGN renders the move text with the result token.
func (r *Recorder) PGN() string {
	return r.game.String()
}

func (r *Recorder) FEN() string {
	return r.game.FEN()
}

// Result maps the notation game's outcome onto a rules result.
func (r *Recorder) Result() model.Result {
	switch r.game.Outcome() {
	case chess.WhiteWon:
		return model.ResultWhiteWins
	case chess.BlackWon:
		return model.ResultBlackWins
	case chess.Draw:
		return model.ResultDraw
	}
	return model.ResultOngoing
}
