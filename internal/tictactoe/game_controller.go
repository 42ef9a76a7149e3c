package tictactoe

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type movePicker interface {
	SelectMove(board entity.Board) (int, error)
}

// Turn describes a committed transition: the human move and, in vs computer mode,
// the reply that followed it.
type Turn struct {
	Index         int
	Mark          entity.Mark
	ComputerIndex int
	ComputerMoved bool
	Outcome       entity.Outcome
}

// PlayMove applies the move for the side to play at the viewed position.
// Any future left over from a previous JumpTo is discarded. In vs computer mode one computer
// reply is appended as its own history entry when the computer is next to move.
// On error the session is left untouched.
func PlayMove(session *entity.Session, index int, picker movePicker) (*Turn, error) {
	mark := session.Turn()

	next, err := entity.ApplyMove(session.Current(), index, mark)
	if err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	// the full slice expression forces a copy so snapshots beyond position are never overwritten
	history := append(session.History[:session.Position+1:session.Position+1], next)
	position := session.Position + 1

	turn := &Turn{
		Index:   index,
		Mark:    mark,
		Outcome: entity.CalculateOutcome(next),
	}

	if shouldComputerReply(session.Mode, turn.Outcome, position) {
		computer, err := computerTurn(next, picker)
		if err != nil {
			return nil, err
		}

		history = append(history, computer.board)
		position++

		turn.ComputerIndex = computer.index
		turn.ComputerMoved = true
		turn.Outcome = entity.CalculateOutcome(computer.board)
	}

	session.History = history
	session.Position = position
	session.UpdatedAt = time.Now().UTC()

	return turn, nil
}

// JumpTo moves the viewed position without touching the history.
func JumpTo(session *entity.Session, position int) error {
	if position < 0 || position >= len(session.History) {
		return fmt.Errorf("%w: %d of %d", apperror.ErrInvalidPosition, position, len(session.History))
	}

	session.Position = position
	session.UpdatedAt = time.Now().UTC()

	return nil
}

func Restart(session *entity.Session) {
	session.Reset()
}

func shouldComputerReply(mode entity.Mode, outcome entity.Outcome, position int) bool {
	return mode == entity.ModeVsComputer &&
		!outcome.IsDecided() &&
		entity.TurnAt(position) == entity.ComputerMark
}

type computerReply struct {
	index int
	board entity.Board
}

func computerTurn(board entity.Board, picker movePicker) (*computerReply, error) {
	index, err := picker.SelectMove(board)
	if err != nil {
		return nil, fmt.Errorf("computer failed to select move: %w", err)
	}

	next, err := entity.ApplyMove(board, index, entity.ComputerMark)
	if err != nil {
		return nil, fmt.Errorf("computer failed to make turn: %w", err)
	}

	return &computerReply{index: index, board: next}, nil
}
