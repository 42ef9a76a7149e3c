package websocket

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
)

var (
	errSessionRequired  = errors.New("session_id is required")
	errIndexRequired    = errors.New("index is required")
	errPositionRequired = errors.New("position is required")
)

func (that *Server) handleNewSession(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	return that.uSession.StartSession(ctx, mode)
}

func (that *Server) handleGetSession(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	if req.SessionID == "" {
		return nil, errSessionRequired
	}

	return that.uSession.GetSession(ctx, req.SessionID)
}

func (that *Server) handleGameTurn(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	if req.SessionID == "" {
		return nil, errSessionRequired
	}

	if req.Index == nil {
		return nil, errIndexRequired
	}

	return that.uSession.PlayMove(ctx, req.SessionID, *req.Index)
}

func (that *Server) handleGameJump(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	if req.SessionID == "" {
		return nil, errSessionRequired
	}

	if req.Position == nil {
		return nil, errPositionRequired
	}

	return that.uSession.JumpTo(ctx, req.SessionID, *req.Position)
}

func (that *Server) handleGameRestart(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	if req.SessionID == "" {
		return nil, errSessionRequired
	}

	return that.uSession.Restart(ctx, req.SessionID)
}

// handleGameMenu answers without a session, the client shows the mode menu again.
func (that *Server) handleGameMenu(ctx context.Context, req *Request) (*entity.Snapshot, error) {
	if req.SessionID == "" {
		return nil, errSessionRequired
	}

	if err := that.uSession.BackToMenu(ctx, req.SessionID); err != nil {
		return nil, err
	}

	return nil, nil
}

// publicError hides internal failures from clients.
func publicError(err error) string {
	if errors.Is(err, apperror.ErrInvalidSession) {
		return "internal error"
	}

	for _, known := range []error{
		apperror.ErrInvalidIndex,
		apperror.ErrInvalidMark,
		apperror.ErrCellOccupied,
		apperror.ErrGameAlreadyDecided,
		apperror.ErrInvalidPosition,
		apperror.ErrUnknownMode,
		repository.ErrSessionNotFound,
		errSessionRequired,
		errIndexRequired,
		errPositionRequired,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
