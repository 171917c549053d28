package service

import "errors"

// Fatal pipeline errors. Anything wrapping one of these aborts the run before
// an artifact exists; per-target publish failures are never errors, they are
// captured as result records instead.
var (
	ErrNoPrompt = errors.New("prompt cannot be empty")
	ErrNoImages = errors.New("no image files provided")
	ErrDecode   = errors.New("unable to decode image")
	ErrEncode   = errors.New("video encoding failed")
)
