package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/inject"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/types"
)

// pasteTimeout bounds one full paste sequence, fallback chain included.
const pasteTimeout = 10 * time.Second

// handle dispatches one IPC request. Failures stay internal and logged; the
// only errors worth surfacing to the caller are bad arguments, unknown
// entries and a hotkey rebind that could not be registered.
func (d *Daemon) handle(req *ipc.Request) *ipc.Response {
	switch req.Command {
	case ipc.CmdPing:
		return ipc.OK("pong")

	case ipc.CmdGetHistory:
		return ipc.OK(d.engine.Sorted())

	case ipc.CmdSearchHistory:
		query, _ := stringArg(req, "query")
		return ipc.OK(d.engine.Search(query))

	case ipc.CmdPasteItem:
		return d.handlePaste(req)

	case ipc.CmdCopyText:
		text, ok := stringArg(req, "text")
		if !ok || text == "" {
			return ipc.Errorf("missing text argument")
		}
		entry := d.engine.Add(types.TypeText, text)
		if err := d.injector.Stage(entry); err != nil {
			d.logger.Warn("Failed to stage copied text", "error", err)
		}
		return ipc.OK(entry)

	case ipc.CmdCopyImage:
		content, ok := stringArg(req, "content")
		if !ok {
			return ipc.Errorf("missing content argument")
		}
		if _, err := clipboard.DecodeImage(content); err != nil {
			return ipc.Errorf("invalid image payload")
		}
		entry := d.engine.Add(types.TypeImage, content)
		if err := d.injector.Stage(entry); err != nil {
			d.logger.Warn("Failed to stage copied image", "error", err)
		}
		return ipc.OK(entry)

	case ipc.CmdTogglePin:
		id, ok := idArg(req)
		if !ok {
			return ipc.Errorf("missing id argument")
		}
		if !d.engine.TogglePin(id) {
			return ipc.Errorf("no such entry")
		}
		return ipc.OK(nil)

	case ipc.CmdDeleteItem:
		id, ok := idArg(req)
		if !ok {
			return ipc.Errorf("missing id argument")
		}
		if !d.engine.Delete(id) {
			return ipc.Errorf("no such entry")
		}
		return ipc.OK(nil)

	case ipc.CmdClearHistory:
		d.engine.Clear()
		return ipc.OK(nil)

	case ipc.CmdAddRecentEmoji:
		glyph, ok := stringArg(req, "glyph")
		if !ok || glyph == "" {
			return ipc.Errorf("missing glyph argument")
		}
		return ipc.OK(d.emojis.Add(glyph))

	case ipc.CmdGetRecentEmojis:
		return ipc.OK(d.emojis.List())

	case ipc.CmdGetHotkey:
		return ipc.OK(d.hotkeys.Active())

	case ipc.CmdSetHotkey:
		binding, ok := stringArg(req, "binding")
		if !ok || binding == "" {
			return ipc.Errorf("missing binding argument")
		}
		if !d.hotkeys.SetBinding(binding) {
			return ipc.Errorf(fmt.Sprintf("could not register hotkey %q, previous binding kept", binding))
		}
		return ipc.OK(d.hotkeys.Active())

	case ipc.CmdShowWindow:
		if err := d.toggle.Show(context.Background()); err != nil {
			return ipc.Errorf(err.Error())
		}
		return ipc.OK(nil)

	case ipc.CmdHideWindow:
		if err := d.toggle.Hide(context.Background()); err != nil {
			return ipc.Errorf(err.Error())
		}
		return ipc.OK(nil)

	default:
		return ipc.Errorf(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (d *Daemon) handlePaste(req *ipc.Request) *ipc.Response {
	id, ok := idArg(req)
	if !ok {
		return ipc.Errorf("missing id argument")
	}

	var entry types.ClipboardEntry
	found := false
	for _, e := range d.engine.All() {
		if e.ID == id {
			entry = e
			found = true
			break
		}
	}
	if !found {
		return ipc.Errorf("no such entry")
	}

	ctx, cancel := context.WithTimeout(context.Background(), pasteTimeout)
	defer cancel()

	injected, err := d.injector.Paste(ctx, entry)
	if err != nil {
		if errors.Is(err, inject.ErrBusy) {
			return ipc.Errorf("another paste is in progress")
		}
		return ipc.Errorf(err.Error())
	}
	return ipc.OK(map[string]interface{}{"injected": injected})
}

// stringArg pulls a string argument out of the request.
func stringArg(req *ipc.Request, key string) (string, bool) {
	v, ok := req.Args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// idArg pulls the entry id. JSON numbers decode as float64; entry ids are
// millisecond timestamps, which float64 represents exactly.
func idArg(req *ipc.Request) (int64, bool) {
	v, ok := req.Args["id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
