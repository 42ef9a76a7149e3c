package apperror

import "errors"

var (
	ErrInvalidIndex       = errors.New("cell index is out of range")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrGameAlreadyDecided = errors.New("game is already decided")
	ErrInvalidPosition    = errors.New("history position is out of range")
	ErrNoLegalMoves       = errors.New("no legal moves")
	ErrInvalidMark        = errors.New("invalid mark")
	ErrUnknownMode        = errors.New("unknown game mode")
	ErrInvalidSession     = errors.New("invalid session state")
)
