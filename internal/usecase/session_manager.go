package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/metrics"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type movePicker interface {
	SelectMove(board entity.Board) (int, error)
}

type recorder interface {
	SessionStarted(mode entity.Mode)
	MovePlayed(mode entity.Mode, player string)
	GameFinished(mode entity.Mode, outcome entity.Outcome)
	MoveRejected(reason string)
}

// SessionManager owns the sessions. Calls for the same session are serialised,
// different sessions proceed in parallel.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	bot         movePicker
	recorder    recorder

	locks *xsync.MapOf[string, *sessionLock]
	newID func() string
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, bot movePicker, recorder recorder) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session_manager"),

		sessionRepo: sessionRepo,
		bot:         bot,
		recorder:    recorder,

		locks: xsync.NewMapOf[string, *sessionLock](),
		newID: uuid.NewString,
	}
}

func (that *SessionManager) StartSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error) {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	session := entity.NewSession(that.newID(), mode)
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.recorder.SessionStarted(mode)
	that.logger.Info("session started", "session_id", session.ID, "mode", mode)

	return session.Snapshot(), nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Snapshot, error) {
	session, err := that.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	return session.Snapshot(), nil
}

func (that *SessionManager) PlayMove(ctx context.Context, id string, index int) (*entity.Snapshot, error) {
	log := that.logger.With("method", "PlayMove", "session_id", id)

	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	turn, err := tictactoe.PlayMove(session, index, that.bot)
	if err != nil {
		that.reject(log, err)
		return nil, fmt.Errorf("failed to play move: %w", err)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	that.recorder.MovePlayed(session.Mode, metrics.PlayerHuman)
	if turn.ComputerMoved {
		that.recorder.MovePlayed(session.Mode, metrics.PlayerComputer)
	}

	log.Debug("move played", "index", index, "mark", turn.Mark,
		"computer_moved", turn.ComputerMoved, "computer_index", turn.ComputerIndex)

	if turn.Outcome.IsDecided() {
		that.recorder.GameFinished(session.Mode, turn.Outcome)
		log.Info("game finished", "status", turn.Outcome.Status, "winner", turn.Outcome.Winner)
	}

	return session.Snapshot(), nil
}

func (that *SessionManager) JumpTo(ctx context.Context, id string, position int) (*entity.Snapshot, error) {
	log := that.logger.With("method", "JumpTo", "session_id", id)

	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.JumpTo(session, position); err != nil {
		that.reject(log, err)
		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	return session.Snapshot(), nil
}

// Restart clears the board and keeps the mode.
func (that *SessionManager) Restart(ctx context.Context, id string) (*entity.Snapshot, error) {
	unlock := that.lock(id)
	defer unlock()

	session, err := that.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	tictactoe.Restart(session)

	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	that.logger.Info("session restarted", "session_id", id, "mode", session.Mode)

	return session.Snapshot(), nil
}

// BackToMenu drops the session together with its mode. A new mode selection starts a new session.
func (that *SessionManager) BackToMenu(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session closed", "session_id", id)

	return nil
}

// sessionLock lives in the map only while some call holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (that *SessionManager) lock(id string) func() {
	held, _ := that.locks.Compute(id, func(current *sessionLock, loaded bool) (*sessionLock, bool) {
		if !loaded {
			current = &sessionLock{}
		}
		current.refs++
		return current, false
	})

	held.mu.Lock()

	return func() {
		held.mu.Unlock()

		that.locks.Compute(id, func(current *sessionLock, _ bool) (*sessionLock, bool) {
			current.refs--
			return current, current.refs == 0
		})
	}
}

func (that *SessionManager) getSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *SessionManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		that.logger.Error("failed to store session", "session_id", session.ID, "error", err)
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *SessionManager) reject(log *slog.Logger, err error) {
	reason := RejectReason(err)
	that.recorder.MoveRejected(reason)

	if reason == reasonInternal {
		log.Error("engine invariant violated", "error", err)
		return
	}

	log.Debug("move rejected", "reason", reason, "error", err)
}

const reasonInternal = "internal"

// RejectReason maps engine errors to short, stable labels.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidIndex):
		return "invalid_index"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, apperror.ErrGameAlreadyDecided):
		return "game_already_decided"
	case errors.Is(err, apperror.ErrInvalidPosition):
		return "invalid_position"
	default:
		return reasonInternal
	}
}
