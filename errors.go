package tramagrid

import "errors"

// Sentinel errors returned by chart operations. Callers match them with
// errors.Is; returned errors usually wrap them with more context.
var (
	ErrInvalidColorFormat = errors.New("invalid color format")
	ErrUnknownIndex       = errors.New("unknown palette index")
	ErrPaletteFull        = errors.New("palette full: 256 color limit reached")
	ErrEmptyCanvas        = errors.New("grid not generated")
	ErrCorruptState       = errors.New("corrupt chart state")
	ErrNoImage            = errors.New("no source image loaded")
	ErrNotFound           = errors.New("not found")
	ErrUnknownEdit        = errors.New("unknown edit kind")
	ErrInvalidKey         = errors.New("invalid store key")
)
