package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type uSession interface {
	StartSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	PlayMove(ctx context.Context, id string, index int) (*entity.Snapshot, error)
	JumpTo(ctx context.Context, id string, position int) (*entity.Snapshot, error)
	Restart(ctx context.Context, id string) (*entity.Snapshot, error)
	BackToMenu(ctx context.Context, id string) error
}

const (
	colorX = "#E88388"
	colorO = "#66C2CD"
)

var errQuit = errors.New("quit")

// Game plays sessions on a line based terminal.
type Game struct {
	logger   *slog.Logger
	uSession uSession

	in  io.Reader
	out *termenv.Output

	// readerDone is closed once the input reader of the last Run has exited.
	readerDone <-chan struct{}
}

func New(logger *slog.Logger, uSession uSession, in io.Reader, out *termenv.Output) *Game {
	return &Game{
		logger:   logger.With("component", "terminal"),
		uSession: uSession,

		in:  in,
		out: out,
	}
}

// Run shows the menu and plays until the user quits, the input ends or ctx is done.
func (that *Game) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	lines, readerDone := that.readLines(ctx, done)
	that.readerDone = readerDone

	for {
		mode, err := that.chooseMode(ctx, lines)
		if err != nil {
			return ignoreQuit(err)
		}

		snapshot, err := that.uSession.StartSession(ctx, mode)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		err = that.play(ctx, lines, snapshot)

		if menuErr := that.uSession.BackToMenu(ctx, snapshot.ID); menuErr != nil {
			that.logger.Error("failed to close session", "session_id", snapshot.ID, "error", menuErr)
		}

		if err != nil {
			return ignoreQuit(err)
		}
	}
}

func (that *Game) chooseMode(ctx context.Context, lines <-chan string) (entity.Mode, error) {
	for {
		that.printf("\n%s\n", that.out.String("Tic-tac-toe").Bold())
		that.printf("  1) two players\n  2) play against the computer\n  q) quit\n> ")

		line, err := next(ctx, lines)
		if err != nil {
			return "", err
		}

		switch line {
		case "1":
			return entity.ModeTwoPlayer, nil
		case "2":
			return entity.ModeVsComputer, nil
		case "q":
			return "", errQuit
		default:
			that.printf("unknown choice %q\n", line)
		}
	}
}

// play returns nil when the user goes back to the menu.
func (that *Game) play(ctx context.Context, lines <-chan string, snapshot *entity.Snapshot) error {
	for {
		that.render(snapshot)
		that.printf("cell 1-9, j N jump, h history, r restart, m menu, q quit\n> ")

		line, err := next(ctx, lines)
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var updated *entity.Snapshot

		switch cmd := fields[0]; {
		case cmd == "q":
			return errQuit
		case cmd == "m":
			return nil
		case cmd == "r":
			updated, err = that.uSession.Restart(ctx, snapshot.ID)
		case cmd == "h":
			that.renderHistory(snapshot)
			continue
		case cmd == "j" && len(fields) == 2:
			position, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				that.printf("not a position: %q\n", fields[1])
				continue
			}
			updated, err = that.uSession.JumpTo(ctx, snapshot.ID, position)
		default:
			cell, convErr := strconv.Atoi(cmd)
			if convErr != nil {
				that.printf("unknown command %q\n", line)
				continue
			}
			updated, err = that.uSession.PlayMove(ctx, snapshot.ID, cell-1)
		}

		if err != nil {
			// rejected actions leave the game as it was
			that.printf("%s\n", that.out.String(err.Error()).Faint())
			continue
		}

		snapshot = updated
	}
}

func (that *Game) render(snapshot *entity.Snapshot) {
	winning := make(map[int]bool, 3)
	for _, cell := range snapshot.Outcome.Line {
		winning[cell] = true
	}

	that.printf("\n")
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			index := row*3 + col
			cells[col] = that.cell(snapshot.Board[index], index, winning[index])
		}

		that.printf(" %s\n", strings.Join(cells, " | "))
		if row < 2 {
			that.printf("---+---+---\n")
		}
	}

	that.printf("\n%s\n", that.status(snapshot))
}

func (that *Game) cell(mark entity.Mark, index int, winning bool) string {
	if mark == entity.EmptyCell {
		return that.out.String(strconv.Itoa(index + 1)).Faint().String()
	}

	style := that.markStyle(mark)
	if winning {
		style = style.Underline()
	}

	return style.String()
}

func (that *Game) markStyle(mark entity.Mark) termenv.Style {
	color := colorX
	if mark == entity.PlayerO {
		color = colorO
	}

	return that.out.String(string(mark)).Foreground(that.out.Color(color)).Bold()
}

func (that *Game) status(snapshot *entity.Snapshot) string {
	var status string

	switch snapshot.Outcome.Status {
	case entity.StatusWin:
		status = "Winner: " + that.markStyle(snapshot.Outcome.Winner).String()
	case entity.StatusDraw:
		status = "Draw"
	default:
		status = "Next player: " + that.markStyle(snapshot.Turn).String()
	}

	if last := len(snapshot.History) - 1; snapshot.Position < last {
		status += fmt.Sprintf("  (viewing move %d of %d)", snapshot.Position, last)
	}

	return status
}

func (that *Game) renderHistory(snapshot *entity.Snapshot) {
	for position := range snapshot.History {
		label := fmt.Sprintf("Go to move #%d", position)
		if position == 0 {
			label = "Go to game start"
		}

		if position == snapshot.Position {
			label = that.out.String(label + " (current)").Bold().String()
		}

		that.printf("  %d: %s\n", position, label)
	}
}

func (that *Game) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Debug("failed to write to terminal", "error", err)
	}
}

// readLines feeds trimmed input lines until the input ends, ctx is done or done is closed.
// A reader blocked on input exits after the next line arrives.
func (that *Game) readLines(ctx context.Context, done <-chan struct{}) (<-chan string, <-chan struct{}) {
	lines := make(chan string)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return lines, stopped
}

func next(ctx context.Context, lines <-chan string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
