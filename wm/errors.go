package wm

import "errors"

var (
	ErrKeymapContext = errors.New("failed to create xkb context")
	ErrKeymapCompile = errors.New("failed to compile keymap")
	ErrNotKeyboard   = errors.New("device claims to be a keyboard but has no keyboard interface")
	ErrUnknownDevice = errors.New("unsupported input device type")
	ErrNoPointer     = errors.New("seat has no pointer")
	ErrAlreadyMapped = errors.New("surface is already mapped")
	ErrNotMapped     = errors.New("surface is not mapped")
)
