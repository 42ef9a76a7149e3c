package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const (
	actionSessionNew  = "session:new"
	actionSessionGet  = "session:get"
	actionGameTurn    = "game:turn"
	actionGameJump    = "game:jump"
	actionGameRestart = "game:restart"
	actionGameMenu    = "game:menu"
	actionError       = "error"
)

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Request struct {
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Index     *int   `json:"index,omitempty"`
	Position  *int   `json:"position,omitempty"`
}

type Response struct {
	Session *entity.Snapshot `json:"session,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type reply struct {
	Action  string   `json:"action"`
	Payload Response `json:"payload"`
}
