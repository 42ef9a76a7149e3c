package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
)

var errBadRequest = errors.New("bad request")

type createSessionRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Index *int `json:"index"`
}

type jumpRequest struct {
	Position *int `json:"position"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Debug("failed to write pong", "error", err)
	}
}

func (that *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	snapshot, err := that.uSession.StartSession(r.Context(), mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *Server) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.uSession.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) playMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Index == nil {
		that.writeError(w, fmt.Errorf("%w: index is required", errBadRequest))
		return
	}

	snapshot, err := that.uSession.PlayMove(r.Context(), chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) jumpTo(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Position == nil {
		that.writeError(w, fmt.Errorf("%w: position is required", errBadRequest))
		return
	}

	snapshot, err := that.uSession.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Position)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) restart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.uSession.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) backToMenu(w http.ResponseWriter, r *http.Request) {
	if err := that.uSession.BackToMenu(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decode(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

// StatusFor maps engine and storage errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidSession):
		return http.StatusInternalServerError
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidIndex),
		errors.Is(err, apperror.ErrInvalidPosition),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
