package interfaces

import "errors"

// Common errors shared across component boundaries.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomExists       = errors.New("room slug already in use")
	ErrStoreUnavailable = errors.New("store unavailable")
)
