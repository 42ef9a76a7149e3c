package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

type Mode string

const (
	ModeTwoPlayer  Mode = "two_player"
	ModeVsComputer Mode = "vs_computer"
)

// ComputerMark is the mark the computer plays in ModeVsComputer.
const ComputerMark = PlayerO

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModeTwoPlayer, ModeVsComputer:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, value)
	}
}

// Session is the state owned by one game: the board history and the position being viewed.
// The outcome and the turn are derived from History[Position] and never stored.
type Session struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	History   []Board   `json:"history"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, mode Mode) *Session {
	now := time.Now().UTC()

	return &Session{
		ID:        id,
		Mode:      mode,
		History:   []Board{{}},
		Position:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TurnAt returns the mark to move after position plies.
func TurnAt(position int) Mark {
	if position%2 == 0 {
		return PlayerX
	}

	return PlayerO
}

// Validate checks a session read from outside the process before any board is indexed.
func (that *Session) Validate() error {
	if _, err := ParseMode(string(that.Mode)); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidSession, err)
	}

	if that.Position < 0 || that.Position >= len(that.History) {
		return fmt.Errorf("%w: position %d of %d", apperror.ErrInvalidSession, that.Position, len(that.History))
	}

	return nil
}

func (that *Session) Current() Board {
	return that.History[that.Position]
}

func (that *Session) Turn() Mark {
	return TurnAt(that.Position)
}

func (that *Session) Outcome() Outcome {
	return CalculateOutcome(that.Current())
}

// Reset brings the session back to a single empty board, the mode is kept.
func (that *Session) Reset() {
	that.History = []Board{{}}
	that.Position = 0
	that.UpdatedAt = time.Now().UTC()
}

func (that *Session) Clone() *Session {
	clone := *that
	clone.History = append([]Board(nil), that.History...)

	return &clone
}

// Snapshot is the read model handed to presentation layers.
type Snapshot struct {
	ID       string  `json:"id"`
	Mode     Mode    `json:"mode"`
	Board    Board   `json:"board"`
	Position int     `json:"position"`
	History  []Board `json:"history"`
	Turn     Mark    `json:"turn,omitempty"`
	Outcome  Outcome `json:"outcome"`
}

func (that *Session) Snapshot() *Snapshot {
	outcome := that.Outcome()

	var turn Mark
	if !outcome.IsDecided() {
		turn = that.Turn()
	}

	return &Snapshot{
		ID:       that.ID,
		Mode:     that.Mode,
		Board:    that.Current(),
		Position: that.Position,
		History:  append([]Board(nil), that.History...),
		Turn:     turn,
		Outcome:  outcome,
	}
}
