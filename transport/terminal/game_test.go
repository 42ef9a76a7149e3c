package terminal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe/internal/metrics"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
)

func runGame(t *testing.T, input string) (string, *repository.MemorySessionRepository) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := repository.NewMemorySessionRepository(logger, 0)
	manager := usecase.NewSessionManager(logger, repo, tictactoe.NewSeededBot(5), metrics.NewRecorder())

	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))

	err := New(logger, manager, strings.NewReader(input), out).Run(context.Background())
	require.NoError(t, err)

	return buf.String(), repo
}

func TestGame_Run(t *testing.T) {
	t.Run("Two players to a win", func(t *testing.T) {
		// Given: two players filling the top row for X
		input := "1\n1\n4\n2\n5\n3\nq\n"

		// When: the game is played
		output, repo := runGame(t, input)

		// Then: X is announced as the winner and the session is closed
		assert.Contains(t, output, "Next player: O")
		assert.Contains(t, output, "Winner: X")
		assert.Contains(t, output, " X | X | X")
		assert.Zero(t, repo.Len())
	})

	t.Run("Rejected moves are reported and ignored", func(t *testing.T) {
		// Given: O trying to play the cell X just took
		output, _ := runGame(t, "1\n1\n1\n10\nfoo\nq\n")

		// Then: the errors are shown and O is still to move
		assert.Contains(t, output, "cell is already occupied")
		assert.Contains(t, output, "cell index is out of range")
		assert.Contains(t, output, `unknown command "foo"`)
		assert.Equal(t, 4, strings.Count(output, "Next player: O"))
	})

	t.Run("History, jump and back to menu", func(t *testing.T) {
		// Given: a vs computer game with one exchange, then a jump to the start
		output, repo := runGame(t, "2\n5\nh\nj 0\nj x\nm\nq\n")

		// Then: both plies are listed and the jump is visible
		assert.Contains(t, output, "Go to game start")
		assert.Contains(t, output, "Go to move #2 (current)")
		assert.Contains(t, output, "(viewing move 0 of 2)")
		assert.Contains(t, output, `not a position: "x"`)
		assert.Equal(t, 2, strings.Count(output, "play against the computer"))
		assert.Zero(t, repo.Len())
	})

	t.Run("Draw and restart", func(t *testing.T) {
		// Given: X:0 O:1 X:2 O:4 X:3 O:5 X:7 O:6 X:8 and a restart
		output, _ := runGame(t, "1\n1\n2\n3\n5\n4\n6\n8\n7\n9\nr\n")

		// Then: the draw is shown and the board is empty again
		assert.Contains(t, output, "Draw")
		assert.True(t, strings.HasSuffix(strings.TrimSpace(output), ">"))
		last := output[strings.LastIndex(output, "Draw"):]
		assert.Contains(t, last, " 1 | 2 | 3")
		assert.Contains(t, last, "Next player: X")
	})

	t.Run("Unknown menu choice and end of input", func(t *testing.T) {
		output, _ := runGame(t, "7\n")

		assert.Contains(t, output, `unknown choice "7"`)
	})
}

func TestGame_InputReaderStops(t *testing.T) {
	// Given: a game reading from a pipe that stays open after the user quits
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := repository.NewMemorySessionRepository(logger, 0)
	manager := usecase.NewSessionManager(logger, repo, tictactoe.NewSeededBot(5), metrics.NewRecorder())

	pr, pw := io.Pipe()
	defer pw.Close()

	var buf bytes.Buffer
	game := New(logger, manager, pr, termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)))

	result := make(chan error, 1)
	go func() {
		result <- game.Run(context.Background())
	}()

	// When: the user quits and more input arrives afterwards
	_, err := pw.Write([]byte("q\n"))
	require.NoError(t, err)

	select {
	case err = <-result:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("game did not stop after quit")
	}

	go func() {
		_, _ = pw.Write([]byte("more\n"))
	}()

	// Then: the reader goroutine exits instead of blocking on the unread line
	select {
	case <-game.readerDone:
	case <-time.After(time.Second):
		t.Fatal("input reader is still running")
	}
}
