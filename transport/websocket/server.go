package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"libdb.so/hserve"
	"nhooyr.io/websocket"
)

type uSession interface {
	StartSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	PlayMove(ctx context.Context, id string, index int) (*entity.Snapshot, error)
	JumpTo(ctx context.Context, id string, position int) (*entity.Snapshot, error)
	Restart(ctx context.Context, id string) (*entity.Snapshot, error)
	BackToMenu(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, req *Request) (*entity.Snapshot, error)

type Server struct {
	logger   *slog.Logger
	uSession uSession

	originPatterns []string
	handlers       map[string]handlerFunc
}

func New(logger *slog.Logger, uSession uSession, originPatterns []string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		uSession: uSession,

		originPatterns: originPatterns,
		handlers:       make(map[string]handlerFunc),
	}

	server.handlers[actionSessionNew] = server.handleNewSession
	server.handlers[actionSessionGet] = server.handleGetSession
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameJump] = server.handleGameJump
	server.handlers[actionGameRestart] = server.handleGameRestart
	server.handlers[actionGameMenu] = server.handleGameMenu

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWebSocket)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	if err := hserve.ListenAndServe(ctx, ":"+port, that.Handler()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: that.originPatterns,
	})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}

	log.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	if err = that.handleMessages(r.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}

			if errors.Is(err, context.Canceled) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if typ != websocket.MessageText {
			if err = that.sendError(ctx, conn, actionError, "only text messages are supported"); err != nil {
				return err
			}
			continue
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			if err = that.sendError(ctx, conn, actionError, "malformed message"); err != nil {
				return err
			}
			continue
		}

		if err = that.dispatch(ctx, conn, &message); err != nil {
			return err
		}
	}
}

func (that *Server) dispatch(ctx context.Context, conn *websocket.Conn, message *Message) error {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		return that.sendError(ctx, conn, message.Action, "unknown action")
	}

	var req Request
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &req); err != nil {
			return that.sendError(ctx, conn, message.Action, "malformed payload")
		}
	}

	snapshot, err := handler(ctx, &req)
	if err != nil {
		log.Debug("action failed", "error", err)
		return that.sendError(ctx, conn, message.Action, publicError(err))
	}

	return that.send(ctx, conn, message.Action, Response{Session: snapshot})
}

func (that *Server) sendError(ctx context.Context, conn *websocket.Conn, action, text string) error {
	return that.send(ctx, conn, action, Response{Error: text})
}

func (that *Server) send(ctx context.Context, conn *websocket.Conn, action string, payload Response) error {
	data, err := json.Marshal(reply{Action: action, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}
