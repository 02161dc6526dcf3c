package cli

import (
	"encoding/json"
	"fmt"

	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/types"
)

// request sends one command to the running daemon and unwraps error
// responses into plain errors.
func request(command string, args map[string]interface{}) (*ipc.Response, error) {
	resp, err := ipc.SendRequest(cfg.SystemPaths.SocketFile, &ipc.Request{
		Command: command,
		Args:    args,
	})
	if err != nil {
		return nil, fmt.Errorf("is the daemon running? %w", err)
	}
	if resp.Status != ipc.StatusOK {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return resp, nil
}

// decodeEntries converts the generic JSON payload back into typed entries.
func decodeEntries(data interface{}) ([]types.ClipboardEntry, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var entries []types.ClipboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeStrings converts the generic JSON payload back into a string list.
func decodeStrings(data interface{}) ([]string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
