//go:build linux

package hotkey

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// modMasks maps parsed modifier tokens onto X11 modifier bits.
var modMasks = map[string]uint16{
	"ctrl":  xproto.ModMaskControl,
	"shift": xproto.ModMaskShift,
	"alt":   xproto.ModMask1,
	"super": xproto.ModMask4,
}

// keysyms for the supported key tokens. Letter keys use their lower-case
// Latin-1 keysym regardless of how the binding is written.
var keysyms = map[string]xproto.Keysym{
	"A": 0x61, "B": 0x62, "C": 0x63, "D": 0x64, "E": 0x65, "F": 0x66,
	"G": 0x67, "H": 0x68, "I": 0x69, "J": 0x6a, "K": 0x6b, "L": 0x6c,
	"M": 0x6d, "N": 0x6e, "O": 0x6f, "P": 0x70, "Q": 0x71, "R": 0x72,
	"S": 0x73, "T": 0x74, "U": 0x75, "V": 0x76, "W": 0x77, "X": 0x78,
	"Y": 0x79, "Z": 0x7a,
	"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
	"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
	"SPACE": 0x20, "TAB": 0xff09,
}

// lockMasks are the lock-state modifiers a grab must tolerate: NumLock
// (Mod2) and CapsLock held down must not defeat the binding.
var lockMasks = []uint16{0, xproto.ModMask2, xproto.ModMaskLock, xproto.ModMask2 | xproto.ModMaskLock}

type grabID struct {
	code xproto.Keycode
	mods uint16
}

// SystemRegistrar grabs combinations on the X root window. The connection is
// opened lazily on the first Register call; without a reachable display every
// registration fails and the manager disables the feature, it never takes the
// process down. Wayland compositors without XWayland land on the same path:
// they expose no global-hotkey protocol.
type SystemRegistrar struct {
	mu        sync.Mutex
	conn      *xgb.Conn
	root      xproto.Window
	keycodes  map[xproto.Keysym]xproto.Keycode
	grabs     map[grabID]func()
	connected bool
	connErr   error
}

// NewSystemRegistrar returns the platform registrar.
func NewSystemRegistrar() *SystemRegistrar {
	return &SystemRegistrar{grabs: make(map[grabID]func())}
}

// connect opens the display and loads the keyboard mapping once. Called with
// the mutex held.
func (r *SystemRegistrar) connect() error {
	if r.connected {
		return r.connErr
	}
	r.connected = true

	conn, err := xgb.NewConn()
	if err != nil {
		r.connErr = fmt.Errorf("no X display for global hotkeys: %w", err)
		return r.connErr
	}

	setup := xproto.Setup(conn)
	min, max := setup.MinKeycode, setup.MaxKeycode
	mapping, err := xproto.GetKeyboardMapping(conn, min, byte(max-min+1)).Reply()
	if err != nil {
		conn.Close()
		r.connErr = fmt.Errorf("failed to load keyboard mapping: %w", err)
		return r.connErr
	}

	per := int(mapping.KeysymsPerKeycode)
	r.keycodes = make(map[xproto.Keysym]xproto.Keycode)
	for i, sym := range mapping.Keysyms {
		if sym == 0 {
			continue
		}
		code := min + xproto.Keycode(i/per)
		if _, seen := r.keycodes[sym]; !seen {
			r.keycodes[sym] = code
		}
	}

	r.conn = conn
	r.root = setup.DefaultScreen(conn).Root
	go r.listen()
	return nil
}

// listen dispatches KeyPress events from grabbed combinations. Lock-state
// bits are masked off before lookup, matching the grab variants.
func (r *SystemRegistrar) listen() {
	for {
		ev, err := r.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			continue
		}
		kp, ok := ev.(xproto.KeyPressEvent)
		if !ok {
			continue
		}

		mods := kp.State &^ (xproto.ModMask2 | xproto.ModMaskLock)
		r.mu.Lock()
		onPress := r.grabs[grabID{code: kp.Detail, mods: mods}]
		r.mu.Unlock()
		if onPress != nil {
			onPress()
		}
	}
}

func (r *SystemRegistrar) Register(binding string, onPress func()) (func(), error) {
	parsed, err := ParseBinding(binding)
	if err != nil {
		return nil, err
	}

	var mods uint16
	for _, name := range parsed.Mods {
		mods |= modMasks[name]
	}
	sym, ok := keysyms[parsed.Key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q in binding %q", parsed.Key, binding)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.connect(); err != nil {
		return nil, err
	}
	code, ok := r.keycodes[sym]
	if !ok {
		return nil, fmt.Errorf("key %q has no keycode on this keyboard", parsed.Key)
	}

	// Grab every lock-state variant; any BadAccess means another client owns
	// the combination, so back out the partial grabs.
	for i, lock := range lockMasks {
		err := xproto.GrabKeyChecked(r.conn, true, r.root, mods|lock, code,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			for _, undo := range lockMasks[:i] {
				xproto.UngrabKey(r.conn, code, r.root, mods|undo)
			}
			return nil, fmt.Errorf("failed to grab %s: %w", binding, err)
		}
	}

	id := grabID{code: code, mods: mods}
	r.grabs[id] = onPress

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, lock := range lockMasks {
			xproto.UngrabKey(r.conn, code, r.root, mods|lock)
		}
		delete(r.grabs, id)
	}, nil
}
