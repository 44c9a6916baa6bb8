package model

import "errors"

// Contract violations. Expected rejections (illegal or self-exposing moves,
// selecting the wrong square) are reported through TurnEvent instead.
var (
	ErrOutOfRange      = errors.New("square out of range")
	ErrEmptySquare     = errors.New("no piece on square")
	ErrNoOwner         = errors.New("piece has no owner")
	ErrMissingKing     = errors.New("player has no king")
	ErrInvalidPosition = errors.New("invalid position")
	ErrUnknownPiece    = errors.New("unknown piece type")
)
