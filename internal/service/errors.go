package service

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrNotSeated        = errors.New("player is not seated in this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrArchiveDisabled  = errors.New("move archive is disabled")
	ErrConnectionExists = errors.New("connection already exists")
)
