package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const BoardSize = 9

type OutcomeStatus string

const (
	StatusInProgress OutcomeStatus = "in_progress"
	StatusWin        OutcomeStatus = "win"
	StatusDraw       OutcomeStatus = "draw"
)

// WinCombos are checked in order, the first complete triple decides the winner.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid. It is a value type, so every move yields a new snapshot.
type Board [BoardSize]Mark

type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
	Line   []int         `json:"line,omitempty"`
}

func (that Outcome) IsDecided() bool {
	return that.Status != StatusInProgress
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// CalculateOutcome never fails, boards with several winning triples report the first one.
func CalculateOutcome(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome{
				Status: StatusWin,
				Winner: a,
				Line:   []int{combo[0], combo[1], combo[2]},
			}
		}
	}

	// the game continues until all the squares are full
	if len(board.EmptyCells()) > 0 {
		return Outcome{Status: StatusInProgress}
	}

	return Outcome{Status: StatusDraw}
}

func ApplyMove(board Board, index int, mark Mark) (Board, error) {
	if index < 0 || index >= BoardSize {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrInvalidIndex, index)
	}

	if !mark.IsPlayer() {
		return board, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if CalculateOutcome(board).IsDecided() {
		return board, apperror.ErrGameAlreadyDecided
	}

	if board[index] != EmptyCell {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	board[index] = mark

	return board, nil
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}
