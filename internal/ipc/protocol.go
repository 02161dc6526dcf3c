// Package ipc carries the request/response boundary between the daemon and
// its clients (the picker UI and the CLI) over a unix socket, plus the
// push-notification stream mutating operations feed.
package ipc

import "github.com/berrythewa/clipdeck/internal/types"

// Commands understood by the daemon.
const (
	CmdPing            = "ping"
	CmdGetHistory      = "get-history"
	CmdSearchHistory   = "search-history"
	CmdPasteItem       = "paste-item"
	CmdCopyText        = "copy-text"
	CmdCopyImage       = "copy-image"
	CmdTogglePin       = "toggle-pin"
	CmdDeleteItem      = "delete-item"
	CmdClearHistory    = "clear-history"
	CmdAddRecentEmoji  = "add-recent-emoji"
	CmdGetRecentEmojis = "get-recent-emojis"
	CmdGetHotkey       = "get-hotkey"
	CmdSetHotkey       = "set-hotkey"
	CmdShowWindow      = "show-window"
	CmdHideWindow      = "hide-window"
	CmdSubscribe       = "subscribe"
)

// Event types pushed to subscribers.
const (
	EventHistoryChanged = "history-changed"
	EventShowWindow     = "show-window"
	EventHideWindow     = "hide-window"
)

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is a command sent to the daemon.
type Request struct {
	Command string                 `json:"command"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

// Response is the daemon's reply.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Event is a push notification streamed to subscribed connections.
type Event struct {
	Event   string                 `json:"event"`
	History []types.ClipboardEntry `json:"history,omitempty"`
}

// OK builds a success response carrying data.
func OK(data interface{}) *Response {
	return &Response{Status: StatusOK, Data: data}
}

// Errorf builds an error response with a human-readable message.
func Errorf(message string) *Response {
	return &Response{Status: StatusError, Message: message}
}
