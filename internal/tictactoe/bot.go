package tictactoe

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// Bot is the computer opponent. It picks an empty cell uniformly at random.
type Bot struct {
	mu   sync.Mutex
	intN func(n int) int
}

func NewBot() *Bot {
	return &Bot{intN: rand.IntN}
}

// NewSeededBot returns a bot with a deterministic PCG source.
func NewSeededBot(seed uint64) *Bot {
	rnd := rand.New(rand.NewPCG(seed, seed)) //nolint: gosec // it's a game

	return &Bot{intN: rnd.IntN}
}

func (that *Bot) SelectMove(board entity.Board) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return SelectComputerMove(board, that.intN)
}

// SelectComputerMove picks one of the empty cells using intN as a uniform source over [0, n).
func SelectComputerMove(board entity.Board, intN func(n int) int) (int, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return 0, apperror.ErrNoLegalMoves
	}

	choice := intN(len(availableCells))
	if choice < 0 || choice >= len(availableCells) {
		return 0, fmt.Errorf("random source returned %d for %d cells", choice, len(availableCells))
	}

	return availableCells[choice], nil
}
