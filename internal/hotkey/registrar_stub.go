//go:build !linux

package hotkey

import "errors"

// SystemRegistrar is unavailable off Linux; the manager reports the feature
// disabled.
type SystemRegistrar struct{}

func NewSystemRegistrar() *SystemRegistrar {
	return &SystemRegistrar{}
}

func (r *SystemRegistrar) Register(binding string, onPress func()) (func(), error) {
	return nil, errors.New("global hotkeys are not supported on this platform")
}
