package model

import "fmt"

// IsChecked reports whether any piece of the opponent could move onto the
// king square of color.
func IsChecked(color Color, b *Board) (bool, error) {
	kingPos, err := b.kingPosition(color)
	if err != nil {
		return false, fmt.Errorf("%s: %w", color, err)
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			attacker := b.squares[row][col].Piece
			if attacker == nil || attacker.Color == color {
				continue
			}
			if attacker.IsValidMove(kingPos, b) {
				return true, nil
			}
		}
	}
	return false, nil
}

// forEachLegalMove calls fn with every legal move of color, in board order,
// until fn returns false.
func forEachLegalMove(b *Board, color Color, last *MoveRecord, fn func(Move) bool) error {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := b.squares[row][col].Piece
			if piece == nil || piece.Color != color {
				continue
			}
			from := Position{Row: row, Col: col}
			more, err := forEachLegalMoveFrom(b, from, last, fn)
			if err != nil || !more {
				return err
			}
		}
	}
	return nil
}

func forEachLegalMoveFrom(b *Board, from Position, last *MoveRecord, fn func(Move) bool) (bool, error) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			move, verdict := Classify(b, from, Position{Row: row, Col: col}, last)
			if verdict != VerdictLegal {
				continue
			}
			exposed, err := ExposesKing(b, move)
			if err != nil {
				return false, err
			}
			if exposed {
				continue
			}
			if !fn(move) {
				return false, nil
			}
		}
	}
	return true, nil
}

// CanMove reports whether color has at least one legal move.
func CanMove(color Color, b *Board, last *MoveRecord) (bool, error) {
	found := false
	err := forEachLegalMove(b, color, last, func(Move) bool {
		found = true
		return false
	})
	return found, err
}

// LegalMoves lists every legal move of color. Promotions are always to a queen.
func LegalMoves(color Color, b *Board, last *MoveRecord) ([]Move, error) {
	var moves []Move
	err := forEachLegalMove(b, color, last, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves, err
}

// LegalTargets lists the squares the piece on from may legally move to.
func LegalTargets(b *Board, from Position, last *MoveRecord) ([]Position, error) {
	targets := []Position{}
	_, err := forEachLegalMoveFrom(b, from, last, func(m Move) bool {
		targets = append(targets, m.To)
		return true
	})
	return targets, err
}

func IsCheckmate(color Color, b *Board, last *MoveRecord) (bool, error) {
	checked, err := IsChecked(color, b)
	if err != nil || !checked {
		return false, err
	}
	canMove, err := CanMove(color, b, last)
	return !canMove, err
}

// IsStalemate reports a draw by "remis": not in check, but no legal move.
func IsStalemate(color Color, b *Board, last *MoveRecord) (bool, error) {
	checked, err := IsChecked(color, b)
	if err != nil || checked {
		return false, err
	}
	canMove, err := CanMove(color, b, last)
	return !canMove, err
}
