package model

// Verdict is the outcome of classifying a selection while a piece is chosen.
type Verdict int

const (
	VerdictLegal Verdict = iota
	// VerdictReset means the chosen square was selected again.
	VerdictReset
	VerdictOwnPiece
	VerdictIllegal
)

// Classify decides what kind of move taking the piece on from to to would be.
// Exactly one classification wins, checked in this order: reset, own piece,
// normal move, castling, en passant. King safety is not considered here.
func Classify(b *Board, from, to Position, last *MoveRecord) (Move, Verdict) {
	piece := b.PieceAt(from)
	if piece == nil || !to.InBounds() {
		return Move{}, VerdictIllegal
	}
	if from == to {
		return Move{}, VerdictReset
	}
	target := b.PieceAt(to)
	if target != nil && target.Color == piece.Color {
		return Move{}, VerdictOwnPiece
	}

	move := Move{Piece: piece, From: from, To: to}
	switch {
	case piece.IsValidMove(to, b):
		move.Kind = MoveNormal
		if target != nil {
			move.Kind = MoveCapture
		}
	case piece.Type == King && piece.IsValidCastlingMove(to, b):
		move.Kind = MoveCastle
	case piece.Type == Pawn && enPassantOpen(last, piece, to) && piece.IsValidEnPassantMove(to, b):
		move.Kind = MoveEnPassant
	default:
		return Move{}, VerdictIllegal
	}
	move.Promotion = piece.Type == Pawn && to.Row == piece.Color.farRow()
	return move, VerdictLegal
}

// enPassantOpen reports whether the last ply was an enemy two-square pawn
// advance on target's file that passed over target.
func enPassantOpen(last *MoveRecord, pawn *Piece, target Position) bool {
	if !last.doublePawnPush() || last.Color == pawn.Color {
		return false
	}
	if last.To.Col != target.Col {
		return false
	}
	lo, hi := min(last.From.Row, last.To.Row), max(last.From.Row, last.To.Row)
	return lo < target.Row && target.Row < hi
}
